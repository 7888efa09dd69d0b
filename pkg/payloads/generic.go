package payloads

import (
	"bufio"
	"embed"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed wordlists/*
var wordlistsFS embed.FS

// loadWordlist reads one newline-delimited payload file from the embedded
// wordlist bank, matching the teacher's embed.FS loader pattern.
func loadWordlist(name string) []string {
	var lines []string
	f, err := wordlistsFS.Open("wordlists/" + name)
	if err != nil {
		log.Error().Err(err).Str("wordlist", name).Msg("failed to open payload wordlist")
		return lines
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Str("wordlist", name).Msg("error reading payload wordlist")
	}
	return lines
}

// GenericPayloads returns the bonus, context-agnostic bank used to top up
// the smart selector when the ranked list runs dry.
func GenericPayloads() []string {
	return loadWordlist("generic.txt")
}
