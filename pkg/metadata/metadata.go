// Package metadata signs generated documents with a trailing comment block
// holding a content hash, and verifies that block later.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "<!-- METADATA_START"
	// TagEnd is the end of the metadata block.
	TagEnd = "METADATA_END -->"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata describes a signed document.
type Metadata struct {
	LastModify time.Time
	Version    string
	Hash       string
	Articles   int
	Comments   int
}

// metadataRegex matches the entire metadata block including tags.
var metadataRegex = regexp.MustCompile(`(?s)<!--\s*METADATA_START\s*\n(.*?)\n\s*METADATA_END\s*-->`)

// Extract removes the metadata block from content and returns both the
// metadata and the cleaned content. The cleaned content is what gets hashed.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	cleanContent := metadataRegex.ReplaceAllString(content, "")
	cleanContent = strings.TrimRight(cleanContent, "\n")

	if len(match) < 2 {
		return nil, cleanContent
	}

	meta := &Metadata{}

	for line := range strings.SplitSeq(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "LAST_MODIFY":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.LastModify = t
			}
		case "HASH":
			meta.Hash = val
		case "VERSION":
			meta.Version = val
		case "ARTICLES":
			meta.Articles, _ = strconv.Atoi(val)
		case "COMMENTS":
			meta.Comments, _ = strconv.Atoi(val)
		}
	}

	return meta, cleanContent
}

// CalculateHash computes the SHA-256 hash of the content, excluding any
// metadata block.
func CalculateHash(content string) string {
	_, clean := Extract(content)
	hash := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(hash[:])
}

// Sign replaces any metadata block in content with a fresh one. Hash and
// LastModify are computed; a zero LastModify in info means now.
func Sign(content string, info Metadata) string {
	_, clean := Extract(content)

	modified := info.LastModify
	if modified.IsZero() {
		modified = time.Now()
	}

	var sb strings.Builder

	sb.WriteString(clean)
	sb.WriteString("\n\n")
	sb.WriteString(TagStart)
	sb.WriteString("\n")

	if info.Version != "" {
		fmt.Fprintf(&sb, "VERSION: %s\n", info.Version)
	}

	fmt.Fprintf(&sb, "ARTICLES: %d\nCOMMENTS: %d\n", info.Articles, info.Comments)
	fmt.Fprintf(&sb, "LAST_MODIFY: %s\n", modified.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "HASH: %s\n", CalculateHash(clean))
	sb.WriteString(TagEnd)

	return sb.String()
}

// Verify checks if the content matches the hash in its metadata.
func Verify(content string) (*Metadata, error) {
	meta, clean := Extract(content)
	if meta == nil {
		return nil, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return meta, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != meta.Hash {
		return meta, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return meta, nil
}

// SameContent reports whether signed carries the hash of content.
func SameContent(signed, content string) bool {
	meta, _ := Extract(signed)

	return meta != nil && meta.Hash == CalculateHash(content)
}
