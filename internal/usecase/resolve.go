package usecase

import (
	"context"
	"fmt"

	"MovieScanner/internal/config"
	"MovieScanner/internal/domain"
)

// resolvePlan builds the run-global add parameters against the manager's
// live registries. Any failure here is stage-fatal: misconfiguration would
// fail every candidate identically, so the run aborts before committing.
func (p *Pipeline) resolvePlan(ctx context.Context) (domain.AddPlan, error) {
	rootFolder, err := p.resolveRootFolder(ctx)
	if err != nil {
		return domain.AddPlan{}, err
	}

	profileID, err := p.resolveQualityProfile(ctx)
	if err != nil {
		return domain.AddPlan{}, err
	}

	tagIDs, err := p.resolveTags(ctx)
	if err != nil {
		return domain.AddPlan{}, err
	}

	return domain.AddPlan{
		RootFolder:          rootFolder,
		QualityProfileID:    profileID,
		TagIDs:              tagIDs,
		Monitored:           p.add.Monitored,
		SearchOnAdd:         p.add.SearchOnAdd,
		MinimumAvailability: p.add.MinimumAvailability,
		DryRun:              p.add.DryRun,
	}, nil
}

// resolveRootFolder uses the configured path, or falls back to the manager's
// first configured root folder. The manager has no explicit default root.
func (p *Pipeline) resolveRootFolder(ctx context.Context) (string, error) {
	if p.add.RootFolder != "" {
		return p.add.RootFolder, nil
	}

	roots, err := p.library.RootFolders(ctx)
	if err != nil {
		return "", fmt.Errorf("list root folders: %w", err)
	}
	if len(roots) == 0 {
		return "", fmt.Errorf("manager has no root folders configured")
	}
	return roots[0], nil
}

// resolveQualityProfile maps the configured name-or-id to a profile ID. A
// numeric value is used as-is; a name must match a live profile exactly.
// Empty config selects the manager's first profile.
func (p *Pipeline) resolveQualityProfile(ctx context.Context) (int, error) {
	value := domain.ParseNameOrID(p.add.QualityProfile)
	if id, ok := value.ID(); ok {
		return id, nil
	}

	profiles, err := p.library.QualityProfiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("list quality profiles: %w", err)
	}
	if len(profiles) == 0 {
		return 0, fmt.Errorf("manager has no quality profiles")
	}

	if value.IsZero() {
		return profiles[0].ID, nil
	}

	for _, profile := range profiles {
		if profile.Name == value.Name() {
			return profile.ID, nil
		}
	}
	return 0, fmt.Errorf("quality profile %q not found", value.Name())
}

// resolveTags maps the configured comma-separated name-or-id list to tag
// IDs, creating unmatched names once per unique name. The result keeps
// config order with duplicates removed.
func (p *Pipeline) resolveTags(ctx context.Context) ([]int, error) {
	entries := config.SplitList(p.add.Tags)
	if len(entries) == 0 {
		return nil, nil
	}

	tags, err := p.library.Tags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	labelToID := make(map[string]int, len(tags))
	for _, tag := range tags {
		labelToID[tag.Label] = tag.ID
	}

	var resolved []int
	for _, entry := range entries {
		value := domain.ParseNameOrID(entry)
		if id, ok := value.ID(); ok {
			resolved = append(resolved, id)
			continue
		}

		if id, ok := labelToID[value.Name()]; ok {
			resolved = append(resolved, id)
			continue
		}

		created, err := p.library.CreateTag(ctx, value.Name())
		if err != nil {
			return nil, fmt.Errorf("create tag %q: %w", value.Name(), err)
		}
		p.info("created tag", "label", created.Label, "id", created.ID)
		labelToID[value.Name()] = created.ID
		resolved = append(resolved, created.ID)
	}

	// Dedupe while preserving order.
	seen := make(map[int]struct{}, len(resolved))
	out := resolved[:0]
	for _, id := range resolved {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}
