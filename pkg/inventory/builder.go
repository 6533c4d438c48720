package inventory

import (
	"context"
	"fmt"

	"github.com/cznic/mathutil"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/wwolkers/librenms-inventory/pkg/librenms"
)

// Source is the remote side of the inventory: *librenms.API satisfies it.
type Source interface {
	DeviceGroups(ctx context.Context) ([]librenms.DeviceGroup, error)
	GroupMembers(ctx context.Context, group librenms.DeviceGroup) ([]int, error)
	Device(ctx context.Context, id int) (librenms.Device, error)
}

type BuilderOption func(b *Builder)

// WithConcurrency() sets how many devices of a group are fetched at once.
// Values <= 0 fetch every member of a group at once, up to 255.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		b.concurrency = n
	}
}

// Builder drives a full resync: list groups, select them, resolve members,
// fetch and map devices, then assemble the inventory.
type Builder struct {
	source      Source
	matcher     *Matcher
	mapper      *Mapper
	concurrency int

	// RunID identifies the last call to Build() in logs and exports.
	RunID uuid.UUID
}

func NewBuilder(source Source, matcher *Matcher, mapper *Mapper, opts ...BuilderOption) *Builder {
	b := &Builder{
		source:      source,
		matcher:     matcher,
		mapper:      mapper,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build() returns the complete inventory, or the first error met. No
// partial inventory is returned on failure.
func (b *Builder) Build(ctx context.Context) (*Inventory, error) {
	b.RunID = uuid.New()
	logger := log.With().Str("run", b.RunID.String()).Logger()

	groups, err := b.source.DeviceGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list device groups: %w", err)
	}
	selected := uniqueGroups(b.matcher.Match(groups))
	logger.Info().Int("groups", len(groups)).Int("selected", len(selected)).Msg("filtered device groups")

	inv := New()
	for _, group := range selected {
		if IsReservedGroup(group.Name) {
			logger.Warn().Str("group", group.Name).Msg("skipping device group with a reserved inventory name")
			continue
		}
		devices, err := b.fetchGroup(ctx, group)
		if err != nil {
			return nil, err
		}
		inv.AddGroup(group.Name)
		for _, child := range group.Children {
			if !IsReservedGroup(child) {
				inv.AddChild(group.Name, child)
			}
		}
		added := 0
		for _, dev := range devices {
			host, ok := b.mapper.Map(dev)
			if !ok {
				logger.Debug().Int("device", dev.ID).Str("group", group.Name).Msg("excluding disabled device")
				continue
			}
			if _, exists := inv.HostVars(host.Name); exists {
				logger.Debug().Str("host", host.Name).Int("device", dev.ID).Msg("replacing variables of duplicate host")
			}
			inv.AddHost(group.Name, host)
			added++
		}
		logger.Debug().Str("group", group.Name).Int("members", len(devices)).Int("hosts", added).Msg("added device group")
	}
	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("built an inconsistent inventory: %w", err)
	}
	logger.Info().Int("groups", len(inv.Groups())).Int("hosts", len(inv.Hosts())).Msg("built inventory")
	return inv, nil
}

// fetchGroup() resolves the members of group and fetches their records.
// The records are returned in member order whatever the concurrency.
func (b *Builder) fetchGroup(ctx context.Context, group librenms.DeviceGroup) ([]librenms.Device, error) {
	ids, err := b.source.GroupMembers(ctx, group)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve members of device group %q: %w", group.Name, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	workers := b.concurrency
	if workers <= 0 {
		workers = mathutil.Clamp(len(ids), 1, 255)
	}

	// the first failure cancels ctx: queued fetches are skipped and
	// in-flight ones are aborted
	devices := make([]librenms.Device, len(ids))
	p := pool.New().WithContext(ctx).WithCancelOnError().WithFirstError().WithMaxGoroutines(workers)
	for i, id := range ids {
		i, id := i, id
		p.Go(func(ctx context.Context) error {
			if ctx.Err() != nil {
				return nil
			}
			dev, err := b.source.Device(ctx, id)
			if err != nil {
				if ctx.Err() != nil {
					// another fetch failed first and is the one reported
					return nil
				}
				return fmt.Errorf("failed to fetch device %d of group %q: %w", id, group.Name, err)
			}
			devices[i] = dev
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch devices of group %q: %w", group.Name, err)
	}
	return devices, nil
}

// uniqueGroups() drops repeated groups, keeping the first occurrence.
func uniqueGroups(groups []librenms.DeviceGroup) []librenms.DeviceGroup {
	seen := make(map[string]bool, len(groups))
	unique := make([]librenms.DeviceGroup, 0, len(groups))
	for _, g := range groups {
		if seen[g.Name] {
			continue
		}
		seen[g.Name] = true
		unique = append(unique, g)
	}
	return unique
}
