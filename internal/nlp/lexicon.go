package nlp

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// lexiconVersion is the manifest format this build can load
const lexiconVersion = 1

// lexiconManifest describes the files of a lexicon data directory
type lexiconManifest struct {
	Version           int    `yaml:"version"`
	POSFile           string `yaml:"pos_file"`
	ThesaurusFile     string `yaml:"thesaurus_file"`
	AbbreviationsFile string `yaml:"abbreviations_file"` // Optional
}

// lexSense is one thesaurus row: synonyms for a word in a given word class
type lexSense struct {
	pos  string
	syns []string
}

// LexiconBackend answers POS and synonym lookups from local TSV data.
// All files load at construction; lookups are map reads with no I/O.
type LexiconBackend struct {
	dir       string
	abbrevs   map[string]bool
	pos       map[string]PartOfSpeech
	thesaurus map[string][]lexSense
}

// NewLexiconBackend loads a lexicon data directory.
// Any missing file or version mismatch is an error; the adapter treats
// that as capability degradation, not a fatal condition.
func NewLexiconBackend(dir string) (*LexiconBackend, error) {
	if dir == "" {
		return nil, errors.New("lexicon directory not configured")
	}

	data, err := os.ReadFile(filepath.Join(dir, "lexicon.yaml"))
	if err != nil {
		return nil, errors.Wrap(err, "read lexicon manifest")
	}

	var manifest lexiconManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parse lexicon manifest")
	}
	if manifest.Version != lexiconVersion {
		return nil, errors.Newf("unsupported lexicon version %d (want %d)", manifest.Version, lexiconVersion)
	}

	b := &LexiconBackend{
		dir:       dir,
		pos:       make(map[string]PartOfSpeech),
		thesaurus: make(map[string][]lexSense),
	}

	if err := b.loadPOS(filepath.Join(dir, manifest.POSFile)); err != nil {
		return nil, err
	}
	if err := b.loadThesaurus(filepath.Join(dir, manifest.ThesaurusFile)); err != nil {
		return nil, err
	}

	var extra []string
	if manifest.AbbreviationsFile != "" {
		extra, err = loadLines(filepath.Join(dir, manifest.AbbreviationsFile))
		if err != nil {
			return nil, errors.Wrap(err, "load abbreviations")
		}
	}
	b.abbrevs = abbreviationSet(extra)

	return b, nil
}

// loadPOS reads a word<TAB>tag file into the POS lexicon
func (b *LexiconBackend) loadPOS(path string) error {
	lines, err := loadLines(path)
	if err != nil {
		return errors.Wrap(err, "load pos lexicon")
	}
	for i, line := range lines {
		fields := strings.Split(line, "\t")
		if len(fields) != 2 {
			return errors.Newf("pos lexicon line %d: want 2 tab-separated fields, got %d", i+1, len(fields))
		}
		b.pos[strings.ToLower(fields[0])] = PartOfSpeech(fields[1])
	}
	return nil
}

// loadThesaurus reads a word<TAB>pos<TAB>syn,syn file
func (b *LexiconBackend) loadThesaurus(path string) error {
	lines, err := loadLines(path)
	if err != nil {
		return errors.Wrap(err, "load thesaurus")
	}
	for i, line := range lines {
		fields := strings.Split(line, "\t")
		if len(fields) != 3 {
			return errors.Newf("thesaurus line %d: want 3 tab-separated fields, got %d", i+1, len(fields))
		}
		word := strings.ToLower(fields[0])
		var syns []string
		for _, s := range strings.Split(fields[2], ",") {
			if s = strings.TrimSpace(s); s != "" {
				syns = append(syns, s)
			}
		}
		if len(syns) == 0 {
			continue
		}
		b.thesaurus[word] = append(b.thesaurus[word], lexSense{pos: fields[1], syns: syns})
	}
	return nil
}

// loadLines reads a file into trimmed, non-empty, non-comment lines
func loadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// Name returns the backend name
func (b *LexiconBackend) Name() string {
	return "lexicon"
}

// Available reports true; construction already proved the data loads
func (b *LexiconBackend) Available(_ context.Context) bool {
	return true
}

// Tokenize is not answered by the lexicon; the adapter falls back
func (b *LexiconBackend) Tokenize(_ context.Context, _ string) []Token {
	return nil
}

// Sentences splits with the default splitter plus the lexicon's abbreviations
func (b *LexiconBackend) Sentences(_ context.Context, text string) []Span {
	return splitSentences(text, b.abbrevs)
}

// Tag answers from the POS lexicon, defaulting unknown words heuristically
func (b *LexiconBackend) Tag(_ context.Context, tokens []Token) []PartOfSpeech {
	tags := make([]PartOfSpeech, len(tokens))
	for i, tok := range tokens {
		if pos, ok := b.pos[strings.ToLower(tok.Text)]; ok {
			tags[i] = pos
			continue
		}
		tags[i] = classifyWord(tok.Text)
	}
	return tags
}

// Entities is not answered by the lexicon; the adapter falls back
func (b *LexiconBackend) Entities(_ context.Context, _ string) []Entity {
	return nil
}

// Synonyms returns thesaurus entries matching the requested word class.
// Senses recorded with pos "*" match any class.
func (b *LexiconBackend) Synonyms(_ context.Context, word string, pos PartOfSpeech) []string {
	senses, ok := b.thesaurus[strings.ToLower(word)]
	if !ok {
		return nil
	}
	var out []string
	for _, sense := range senses {
		if sense.pos == "*" || pos == "" || sense.pos == string(pos) {
			out = append(out, sense.syns...)
		}
	}
	return out
}
