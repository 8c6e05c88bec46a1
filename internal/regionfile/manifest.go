package regionfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseManifest читает список файлов регионов: одна запись на строку,
// строки, начинающиеся с '#' считаются комментариями, пустые строки пропускаются.
func ParseManifest(r io.Reader) ([]string, error) {
	var entries []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadManifest читает манифест карты с диска
func ReadManifest(path string) ([]string, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия манифеста %s: %w", path, err)
	}
	defer in.Close()

	entries, err := ParseManifest(in)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения манифеста %s: %w", path, err)
	}
	return entries, nil
}

// WriteManifest записывает манифест с комментарием-заголовком
func WriteManifest(path string, header string, entries []string) error {
	var sb strings.Builder
	if header != "" {
		sb.WriteString("# ")
		sb.WriteString(header)
		sb.WriteByte('\n')
	}
	for _, e := range entries {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0644)
}
