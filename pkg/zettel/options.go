package zettel

import (
	"fmt"
	"sort"

	"github.com/yaklabco/zkit/pkg/config"
	"github.com/yaklabco/zkit/pkg/mdast"
	"github.com/yaklabco/zkit/pkg/split"
)

// OptionsFromConfig builds pipeline options from loaded configuration.
// Pattern overrides are compiled here, so a bad expression fails before any
// note is read.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	if cfg == nil {
		return DefaultOptions(), nil
	}

	pred, err := split.ParsePredicate(cfg.Split.Type, cfg.Split.Attributes)
	if err != nil {
		return Options{}, fmt.Errorf("split type %q: %w", cfg.Split.Type, err)
	}

	patterns, err := PatternsFromConfig(cfg.Patterns)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Predicate:       pred,
		UseKeyword:      cfg.Split.UseKeyword,
		RemoveKeyword:   cfg.Split.RemoveKeyword,
		Keyword:         cfg.Split.Keyword,
		FoldBlocks:      cfg.Split.FoldBlocks,
		CopyGlobalTags:  cfg.Split.CopyGlobalTags,
		CopyFrontmatter: cfg.Split.CopyFrontmatter,
		MoveFootnotes:   cfg.Split.MoveFootnotes,
		Patterns:        patterns,
	}, nil
}

// PatternsFromConfig applies named overrides to the default pattern table.
// Overrides are applied in name order so errors are reported deterministically.
func PatternsFromConfig(overrides map[string]string) (*mdast.Patterns, error) {
	patterns := mdast.DefaultPatterns()
	if len(overrides) == 0 {
		return patterns, nil
	}

	names := make([]string, 0, len(overrides))
	for name := range overrides {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := patterns.Override(name, overrides[name]); err != nil {
			return nil, fmt.Errorf("pattern %q: %w", name, err)
		}
	}
	return patterns, nil
}
