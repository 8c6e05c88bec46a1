package voxel

// ID представляет идентификатор типа вокселя (один байт на воксель)
type ID uint8

// Air: пустой воксель без имени
const Air ID = 0

// names: неизменяемая таблица имён типов вокселей.
// Имена используются только для подписей и отладки; часть типов
// (полублоки, лестницы, таблички) отображается текстурой базового материала,
// поэтому имена повторяются.
var names = [...]string{
	"", // 0
	"stone",
	"grass",
	"dirt",
	"cobblestone",
	"plank",
	"sapling",
	"bedrock",
	"water_flow",
	"water_still",
	"lava_flow", // 10
	"lava_still",
	"sand",
	"gravel",
	"gold_ore",
	"iron_ore",
	"coal_ore",
	"wood",
	"leaves",
	"sponge",
	"glass", // 20
	"lapis_ore",
	"lapis_block",
	"dispenser",
	"sandstone",
	"note_block",
	"bed_block",
	"rail",
	"detector",
	"piston",
	"web", // 30
	"deadbush",
	"grass",
	"fern",
	"deadbush",
	"piston",
	"piston_top",
	"wool_colored_white",
	"wool_colored_orange",
	"wool_colored_magenta",
	"wool_colored_light_blue", // 40
	"wool_colored_yellow",
	"wool_colored_lime",
	"wool_colored_pink",
	"wool_colored_gray",
	"wool_colored_gray", // светло-серая
	"wool_colored_cyan",
	"wool_colored_purple",
	"wool_colored_blue",
	"wool_colored_brown",
	"wool_colored_green", // 50
	"wool_colored_red",
	"wool_colored_black",
	"flower_dandelion",
	"flower_rose",
	"mushroom_brown",
	"mushroom_red",
	"gold_block",
	"iron_block",
	"stone_slab",
	"sandstone", // 60, полублок
	"wood",
	"cobblestone",
	"brick",
	"stonebrick",
	"nether_brick",
	"quartz_block",
	"brick",
	"tnt",
	"bookshelf",
	"cobblestone_mossy", // 70
	"obsidian",
	"torch_on",
	"fire_layer0",
	"mob_spawner",
	"wood", // лестница
	"wood", // сундук
	"redstone",
	"diamond_ore",
	"diamond_block",
	"wood", // 80, верстак
	"wheat_stage_5",
	"dirt", // пашня
	"furnace_off",
	"furnace_on",
	"wood", // табличка
	"door_wood",
	"ladder",
	"rail_normal",
	"cobblestone",
	"stone", // 90, настенная табличка
	"lever",
	"stone", // нажимная плита
	"door_iron",
	"wood",
	"redstone_ore",
	"redstone",
	"redstone_torch_off",
	"redstone_torch_on",
	"stone", // кнопка
	"snow", // 100
	"ice",
	"snow",
	"cactus",
	"clay",
	"grass", // тростник
	"jukebox",
	"fence",
	"pumpkin",
	"netherrack",
	"sould_sand", // 110
	"glowstone",
	"portal",
	"pumpkin",
	"cake",
	"redstone_torch_off", // повторитель
	"redstone_torch_on",
	"wood",
	"trapdoor",
	"stone",
	"cobblestone", // 120
	"stonebrick",
	"stonebrick",
	"stonebrick_mossy",
	"stonebrick_cracked",
	"mushroom_block_red",
	"mushroom_block_brown",
	"iron_bars",
	"glass_pane",
	"melon",
	"pumpkin_stem_disconnected", // 130
	"melon",
	"vine",
	"wood",
	"brick",
	"stonebrick",
	"mycelium",
	"waterlily",
	"nether_brick",
	"nether_brick",
	"nether_brick", // 140
	"nether_wart_stage_2",
	"enchanting_table",
	"brewing_stand",
	"cauldron",
	"end_frame",
	"end_stone",
	"dragon_egg",
	"redstone_lamp_off",
	"redstone_lamp_on",
	"planks_oak", // 150
	"planks_spruce",
	"planks_birch",
	"planks_jungle",
	"planks_oak",
	"planks_spruce",
	"planks_birch",
	"planks_jungle",
	"cocoa_stage_1",
}

// byName хранит наименьший ID для каждого имени
var byName map[string]ID

func init() {
	byName = make(map[string]ID, len(names))
	for i, name := range names {
		if name == "" {
			continue
		}
		if _, exists := byName[name]; !exists {
			byName[name] = ID(i)
		}
	}
}

// Часто используемые типы
const (
	Stone      ID = 1
	Grass      ID = 2
	Dirt       ID = 3
	Bedrock    ID = 7
	WaterStill ID = 9
	Sand       ID = 12
	Gravel     ID = 13
	Wood       ID = 17
	Leaves     ID = 18
)

// Count возвращает длину таблицы имён
func Count() int {
	return len(names)
}

// Name возвращает имя типа или "" для безымянных типов и ID за концом таблицы
func Name(id ID) string {
	if int(id) >= len(names) {
		return ""
	}
	return names[id]
}

// Known проверяет, что у типа есть имя
func Known(id ID) bool {
	return Name(id) != ""
}

// Lookup возвращает наименьший ID с указанным именем
func Lookup(name string) (ID, bool) {
	id, ok := byName[name]
	return id, ok
}

// Names возвращает копию таблицы имён
func Names() []string {
	out := make([]string, len(names))
	copy(out, names[:])
	return out
}
