package processor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/AbhinavKumar0000/Agentic-RAG-KG-VDB/internal/models"
)

type ProcessorConfig struct {
	ChunkSize    int // characters per chunk
	ChunkOverlap int // characters shared by consecutive chunks
}

// Processor splits extracted document text into overlapping chunks and
// sanitizes them for storage.
type Processor struct {
	config   ProcessorConfig
	splitter textsplitter.RecursiveCharacter
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.ChunkSize == 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap == 0 {
		config.ChunkOverlap = 200
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(config.ChunkSize),
		textsplitter.WithChunkOverlap(config.ChunkOverlap),
	)

	return Processor{
		config:   config,
		splitter: splitter,
	}
}

// Chunk splits content into overlapping chunks, each tagged with the
// tenant identity and source filename.
func (p *Processor) Chunk(userID, source, content string) ([]models.Chunk, error) {
	parts, err := p.splitter.SplitText(content)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}

	chunks := make([]models.Chunk, 0, len(parts))
	for i, part := range parts {
		clean := sanitizeText(part)
		if strings.TrimSpace(clean) == "" {
			continue
		}
		chunks = append(chunks, models.Chunk{
			ID:      uuid.NewString(),
			UserID:  userID,
			Source:  source,
			Content: clean,
			Index:   i,
		})
	}

	return chunks, nil
}

// sanitizeText strips characters Postgres text columns reject (NUL
// bytes) and repairs invalid UTF-8 sequences.
func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")

	if utf8.ValidString(s) {
		return s
	}

	v := make([]rune, 0, len(s))
	for i, r := range s {
		if r == utf8.RuneError {
			_, size := utf8.DecodeRuneInString(s[i:])
			if size == 1 {
				continue
			}
		}
		v = append(v, r)
	}
	return string(v)
}
