package world

import "errors"

// Ошибки вставки. Все они восстановимы: вызывающий решает, пропустить
// блок или прервать загрузку.
var (
	// ErrOutOfBounds: точка лежит вне адресуемой области какого-то уровня
	ErrOutOfBounds = errors.New("world: точка вне границ")

	// ErrDuplicate: ячейка блока уже занята
	ErrDuplicate = errors.New("world: блок уже вставлен")

	// ErrGeometryMismatch: коробка блока не совпадает с ячейкой региона
	ErrGeometryMismatch = errors.New("world: геометрия блока не совпадает с сеткой")

	// ErrVoxelCount: данных вокселей не 4096 байт
	ErrVoxelCount = errors.New("world: неверное число вокселей")
)
