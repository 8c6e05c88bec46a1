package regionfile

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// zstdMagic: первые байты zstd-кадра
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Read открывает файл региона, извлекает координаты из имени и декодирует
// содержимое. Файлы, сжатые zstd, распаковываются прозрачно.
func Read(path string) (*File, error) {
	coords, err := ParseName(path)
	if err != nil {
		return nil, err
	}

	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия региона %s: %w", path, err)
	}
	defer in.Close()

	f, err := decodeMaybeCompressed(bufio.NewReader(in))
	if err != nil {
		return nil, fmt.Errorf("регион %s: %w", path, err)
	}
	f.Coords = coords
	return f, nil
}

func decodeMaybeCompressed(br *bufio.Reader) (*File, error) {
	head, err := br.Peek(len(zstdMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}
	if !bytes.Equal(head, zstdMagic) {
		return Decode(br)
	}

	dec, err := zstd.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации zstd: %w", err)
	}
	defer dec.Close()
	return Decode(dec)
}

// Write записывает файл региона; при compress == true содержимое сжимается zstd
func Write(path string, f *File, compress bool) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ошибка создания региона %s: %w", path, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(out)
	if compress {
		enc, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return fmt.Errorf("ошибка инициализации zstd: %w", err)
		}
		if err := Encode(enc, f); err != nil {
			enc.Close()
			return err
		}
		if err := enc.Close(); err != nil {
			return err
		}
	} else if err := Encode(bw, f); err != nil {
		return err
	}
	return bw.Flush()
}
