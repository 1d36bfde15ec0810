package usecase

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/zots0127/locker/internal/domain/entities"
	"github.com/zots0127/locker/internal/domain/repository"
	"github.com/zots0127/locker/pkg/metrics"
)

// GroupUseCase manages the group registry
type GroupUseCase struct {
	groups repository.GroupRepository
	mirror repository.Mirror
}

// NewGroupUseCase creates a new group use case. mirror may be nil.
func NewGroupUseCase(groups repository.GroupRepository, mirror repository.Mirror) *GroupUseCase {
	return &GroupUseCase{groups: groups, mirror: mirror}
}

// List returns all groups in creation order
func (g *GroupUseCase) List(ctx context.Context) ([]entities.Group, error) {
	groups, err := g.groups.List(ctx)
	if err != nil {
		return nil, err
	}
	metrics.Groups.Set(float64(len(groups)))
	return groups, nil
}

// Create registers a group and creates its folder
func (g *GroupUseCase) Create(ctx context.Context, name string) (*entities.Group, error) {
	group, err := g.groups.Create(ctx, name)
	if err != nil {
		return nil, err
	}

	log.Info().Str("group", group.Name).Str("id", group.ID).Msg("group created")
	metrics.Groups.Inc()
	return group, nil
}

// Delete removes a group with all of its files
func (g *GroupUseCase) Delete(ctx context.Context, name string) error {
	if err := g.groups.Delete(ctx, name); err != nil {
		return err
	}

	log.Info().Str("group", name).Msg("group deleted")
	metrics.DeletesTotal.WithLabelValues("group").Inc()
	metrics.Groups.Dec()

	if g.mirror != nil {
		if err := g.mirror.DeletePrefix(ctx, entities.MirrorKey(name, "")); err != nil {
			metrics.MirrorErrorsTotal.WithLabelValues("delete_prefix").Inc()
			log.Warn().Err(err).Str("group", name).Msg("failed to remove mirrored group")
		}
	}
	return nil
}
