// Package assemble builds the bounded text context handed to the answer
// generator. Assembly is deterministic: identical inputs produce
// byte-identical serialized output.
package assemble

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/docintel/answer-engine/internal/models"
)

// DocumentExcerpt pairs a document reference with the text used for context.
type DocumentExcerpt struct {
	Ref     models.DocumentReference
	Content string
}

// Entry is one source inside a ContextBlock.
type Entry struct {
	Content   string
	SourceURL string
	Title     string
}

// ContextBlock is the ordered, bounded context for one query.
type ContextBlock struct {
	Entries  []Entry
	maxChars int
}

// Options bound the assembled context. Zero values fall back to defaults.
type Options struct {
	MaxItems    int // search results included, default 4
	MaxChars    int // total serialized budget, default 8000
	MaxDocChars int // per-document hard truncation, default 2000
}

const (
	DefaultMaxItems    = 4
	DefaultMaxChars    = 8000
	DefaultMaxDocChars = 2000

	// inlineContextTitle tags caller-supplied document text that has no
	// stored document behind it.
	inlineContextTitle = "Uploaded Document"
)

func (o Options) withDefaults() Options {
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	if o.MaxChars <= 0 {
		o.MaxChars = DefaultMaxChars
	}
	if o.MaxDocChars <= 0 {
		o.MaxDocChars = DefaultMaxDocChars
	}
	return o
}

// Assemble merges search results, document excerpts and inline document text
// into one bounded block. Search results come first in provider order up to
// MaxItems; documents follow in input order, each truncated to MaxDocChars;
// inline context is appended last. Exact-duplicate source URLs are skipped.
// No re-ranking or semantic chunking happens here.
func Assemble(searchResults []models.SearchResult, documents []DocumentExcerpt, inlineContext string, opts Options) ContextBlock {
	opts = opts.withDefaults()

	block := ContextBlock{maxChars: opts.MaxChars}
	seen := make(map[string]bool)

	count := 0
	for _, result := range searchResults {
		if count >= opts.MaxItems {
			break
		}
		if result.Snippet == "" || seen[result.Link] {
			continue
		}
		seen[result.Link] = true
		block.Entries = append(block.Entries, Entry{
			Content:   result.Snippet,
			SourceURL: result.Link,
			Title:     result.Title,
		})
		count++
	}

	for _, doc := range documents {
		content := doc.Content
		if content == "" {
			content = doc.Ref.Summary
		}
		if content == "" {
			continue
		}
		block.Entries = append(block.Entries, Entry{
			Content:   truncate(content, opts.MaxDocChars),
			SourceURL: "document://" + doc.Ref.ID,
			Title:     doc.Ref.Name,
		})
	}

	if strings.TrimSpace(inlineContext) != "" {
		block.Entries = append(block.Entries, Entry{
			Content:   truncate(inlineContext, opts.MaxDocChars),
			SourceURL: "document://inline",
			Title:     inlineContextTitle,
		})
	}

	return block
}

// Empty reports whether no source contributed any content.
func (b ContextBlock) Empty() bool { return len(b.Entries) == 0 }

// Serialize renders the block as the text handed to the generator. The
// result never exceeds the configured character budget.
func (b ContextBlock) Serialize() string {
	if len(b.Entries) == 0 {
		return ""
	}

	maxChars := b.maxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	var sb strings.Builder
	for i, entry := range b.Entries {
		section := fmt.Sprintf("[%d] %s (%s)\n%s\n\n", i+1, entry.Title, entry.SourceURL, entry.Content)

		remaining := maxChars - sb.Len()
		if remaining <= 0 {
			break
		}
		if len(section) > remaining {
			sb.WriteString(truncate(section, remaining))
			break
		}
		sb.WriteString(section)
	}

	return sb.String()
}

// truncate cuts s to at most max bytes, backing up so a multi-byte rune is
// never split at the boundary.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
