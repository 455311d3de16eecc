package subscriptions

import (
	"context"
	"strings"
	"sync"

	"github.com/haulbase/haulbase/internal/models"
)

// EntityInfo is the display projection of a resolved id.
type EntityInfo struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Role  string `json:"role,omitempty"`
	Brand string `json:"brand,omitempty"`
	Year  int    `json:"year,omitempty"`
}

// ResolveEntities maps opaque ids to display data. The users, trucks and
// trailers tables are probed in parallel and merged; ids found nowhere
// resolve to an explicit unknown marker. An empty input returns an empty
// map without contacting the store.
func (s *Service) ResolveEntities(ctx context.Context, ids []string) (map[string]EntityInfo, error) {
	result := map[string]EntityInfo{}
	if len(ids) == 0 {
		return result, nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		users, err := s.users.BatchGetUsers(ctx, ids)
		if err != nil {
			fail(err)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		for _, u := range users {
			result[u.ID] = EntityInfo{Name: u.Name, Type: "user", Role: string(u.Role)}
		}
	}()
	for _, kind := range []models.AssetKind{models.KindTruck, models.KindTrailer} {
		go func(kind models.AssetKind) {
			defer wg.Done()
			assets, err := s.assets.BatchGetAssets(ctx, ids, kind)
			if err != nil {
				fail(err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, a := range assets {
				// Display name for assets is the license plate.
				result[a.ID] = EntityInfo{
					Name:  a.Plate,
					Type:  strings.ToLower(string(kind)),
					Brand: a.Brand,
					Year:  a.Year,
				}
			}
		}(kind)
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	for _, id := range ids {
		if _, ok := result[id]; !ok {
			result[id] = EntityInfo{Name: "Unknown", Type: "unknown"}
		}
	}
	return result, nil
}
