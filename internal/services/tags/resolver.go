package tags

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/colligo/internal/interfaces"
	"github.com/ternarybob/colligo/internal/models"
)

// TagAPI defines the backend tag endpoints the resolver needs.
type TagAPI interface {
	LookupTag(ctx context.Context, name string) (bool, string, error)
	CreateTag(ctx context.Context, name, colorHex, description string) (string, error)
}

// Description stamped on tags the resolver creates, so auto-created tags
// are distinguishable from curated ones in the backend.
const defaultTagDescription = "Created during capture"

// Colors assigned to newly created tags. Selection is a stable hash of
// the name so the same tag gets the same color on every client.
var tagPalette = []string{
	"#4C6EF5", "#15AABF", "#40C057", "#FAB005",
	"#FD7E14", "#FA5252", "#BE4BDB", "#7950F2",
}

// Resolver maps tag names to backend tag IDs, creating missing tags on
// the fly. Resolution is sequential: creations are rare and ordering
// keeps the backend's duplicate detection simple.
type Resolver struct {
	api    TagAPI
	logger arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.TagResolver = (*Resolver)(nil)

// NewResolver creates a new tag resolver
func NewResolver(api TagAPI, logger arbor.ILogger) *Resolver {
	return &Resolver{
		api:    api,
		logger: logger,
	}
}

// Resolve looks up each name and creates any that do not exist. A name
// that fails both lookup and creation is skipped, not fatal: the record
// is submitted with the tags that did resolve and the skipped names are
// reported back to the caller.
func (r *Resolver) Resolve(ctx context.Context, names []string) ([]string, []string, error) {
	ids := make([]string, 0, len(names))
	skipped := make([]string, 0)
	seen := make(map[string]bool, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		id, err := r.resolveOne(ctx, name)
		if err != nil {
			tagErr := &models.TagResolutionError{TagName: name, Err: err}
			r.logger.Warn().Err(tagErr).Str("tag", name).Msg("Skipping unresolvable tag")
			skipped = append(skipped, name)
			continue
		}

		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids, skipped, nil
}

func (r *Resolver) resolveOne(ctx context.Context, name string) (string, error) {
	found, id, err := r.api.LookupTag(ctx, name)
	if err != nil {
		return "", fmt.Errorf("lookup failed: %w", err)
	}
	if found {
		return id, nil
	}

	id, err = r.api.CreateTag(ctx, name, colorFor(name), defaultTagDescription)
	if err != nil {
		return "", fmt.Errorf("creation failed: %w", err)
	}

	r.logger.Debug().Str("tag", name).Str("tag_id", id).Msg("Created tag")
	return id, nil
}

func colorFor(name string) string {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(name)))
	return tagPalette[h.Sum32()%uint32(len(tagPalette))]
}
