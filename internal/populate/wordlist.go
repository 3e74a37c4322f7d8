package populate

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadWordList returns the trimmed, non-empty lines of reader in order.
func ReadWordList(reader io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word != "" {
			words = append(words, word)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner.Scan > %w", err)
	}
	return words, nil
}

// ReadWordListFile reads a newline-delimited word list file.
func ReadWordListFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()
	return ReadWordList(file)
}
