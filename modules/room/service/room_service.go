package service

import (
	"context"
	"fmt"

	"roomdisplay/core/cache"
	"roomdisplay/core/config"
	"roomdisplay/core/constants"
	"roomdisplay/core/errors"
	"roomdisplay/core/logger"
	providersvc "roomdisplay/modules/provider/service"
	"roomdisplay/modules/room/entity"

	"github.com/gosimple/slug"
)

type ProviderResolver interface {
	Resolve() (providersvc.CalendarProvider, *errors.AppError)
}

// Service maintains the active room roster. Rooms are read-only provider
// state; the roster is cached with a TTL and can be refreshed out of band.
type Service struct {
	factory ProviderResolver
	cache   cache.Cache
}

func NewService(factory ProviderResolver, c cache.Cache) *Service {
	return &Service{factory: factory, cache: c}
}

// RoomLists returns the provider's room lists, scoped to the configured
// subset when sync.room_lists is non-empty.
func (s *Service) RoomLists(ctx context.Context) ([]entity.RoomList, *errors.AppError) {
	prov, appErr := s.factory.Resolve()
	if appErr != nil {
		return nil, appErr
	}

	lists, appErr := prov.ListRoomLists(ctx)
	if appErr != nil {
		return nil, appErr
	}

	cfg, _ := config.GetSafe()
	var wanted []string
	if cfg != nil {
		wanted = cfg.Sync.RoomLists
	}
	filtered := filterRoomLists(lists, wanted)

	for i := range filtered {
		filtered[i].Alias = slug.Make(filtered[i].Name)
	}
	return filtered, nil
}

// ActiveRooms returns the deployment's room set, via the cached roster when
// available. A cache miss rebuilds from the provider.
func (s *Service) ActiveRooms(ctx context.Context) ([]entity.Room, *errors.AppError) {
	var cached []entity.Room
	if err := s.cache.GetJSON(ctx, constants.RoomRosterCacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}
	return s.rebuildRoster(ctx)
}

// RefreshRoster rebuilds the roster bypassing the cache; the periodic
// background task calls this so renamed rooms appear without a restart.
func (s *Service) RefreshRoster(ctx context.Context) *errors.AppError {
	_, appErr := s.rebuildRoster(ctx)
	return appErr
}

func (s *Service) FindByAliasOrEmail(ctx context.Context, key string) (*entity.Room, *errors.AppError) {
	rooms, appErr := s.ActiveRooms(ctx)
	if appErr != nil {
		return nil, appErr
	}
	for i := range rooms {
		if rooms[i].Alias == key || rooms[i].Email == key {
			return &rooms[i], nil
		}
	}
	return nil, errors.NewAppError(errors.ErrNotFound, "unknown room: "+key, nil)
}

func (s *Service) rebuildRoster(ctx context.Context) ([]entity.Room, *errors.AppError) {
	prov, appErr := s.factory.Resolve()
	if appErr != nil {
		return nil, appErr
	}

	lists, appErr := s.RoomLists(ctx)
	if appErr != nil {
		return nil, appErr
	}

	var overrides map[string]string
	if cfg, ok := config.GetSafe(); ok {
		overrides = cfg.Sync.AliasOverrides
	}

	var rooms []entity.Room
	for _, rl := range lists {
		listRooms, appErr := prov.ListRooms(ctx, rl.ID)
		if appErr != nil {
			logger.Warn("RoomService:rebuildRoster:ListRoomsFailed", "room_list", rl.Name, "error", appErr)
			continue
		}
		rooms = append(rooms, listRooms...)
	}
	if len(rooms) == 0 && len(lists) > 0 {
		return nil, errors.NewAppError(errors.ErrProviderUnavailable, "no rooms could be fetched from any room list", nil)
	}

	assignAliases(rooms, overrides)

	if err := s.cache.SetJSON(ctx, constants.RoomRosterCacheKey, rooms, constants.RoomRosterTTL); err != nil {
		logger.Warn("RoomService:rebuildRoster:CacheWriteFailed", "error", err)
	}
	logger.Info("RoomService:rebuildRoster:Done", "rooms", len(rooms), "room_lists", len(lists))
	return rooms, nil
}

func filterRoomLists(lists []entity.RoomList, wanted []string) []entity.RoomList {
	if len(wanted) == 0 {
		return lists
	}
	keep := make(map[string]bool, len(wanted))
	for _, w := range wanted {
		keep[w] = true
	}
	out := make([]entity.RoomList, 0, len(lists))
	for _, rl := range lists {
		if keep[rl.Name] || keep[rl.Email] || keep[rl.ID] {
			out = append(out, rl)
		}
	}
	return out
}

// assignAliases derives each room's alias from its display name
// (transliterated to ASCII, lower-cased, spaces to dashes) unless an
// override exists. Duplicates get a numeric suffix so the alias stays
// unique within the active set.
func assignAliases(rooms []entity.Room, overrides map[string]string) {
	seen := make(map[string]bool, len(rooms))
	for i := range rooms {
		alias := ""
		if overrides != nil {
			alias = overrides[rooms[i].Name]
			if alias == "" {
				alias = overrides[rooms[i].Email]
			}
		}
		if alias == "" {
			alias = slug.Make(rooms[i].Name)
		}
		if seen[alias] {
			base := alias
			for n := 2; ; n++ {
				alias = fmt.Sprintf("%s-%d", base, n)
				if !seen[alias] {
					break
				}
			}
			logger.Warn("RoomService:assignAliases:DuplicateAlias", "room", rooms[i].Name, "alias", alias)
		}
		seen[alias] = true
		rooms[i].Alias = alias
	}
}
