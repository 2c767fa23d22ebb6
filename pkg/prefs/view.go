package prefs

import (
	"fmt"
	"slices"

	"github.com/OpenMined/SyftUI-sub000/pkg/navigation"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// SortPreference is the value stored under KeySort
type SortPreference struct {
	Key   navigation.SortKey   `json:"key"`
	Order navigation.SortOrder `json:"order"`
}

// LoadView overlays the stored preferences on base. Unset keys keep the
// value of base; invalid stored values are reported.
func LoadView(s *Store, base navigation.View) (navigation.View, error) {
	v := base

	var mode navigation.ViewMode
	if ok, err := s.Get(KeyViewMode, &mode); err != nil {
		return base, err
	} else if ok {
		if mode != navigation.ViewGrid && mode != navigation.ViewList {
			return base, fmt.Errorf("invalid %s %q", KeyViewMode, mode)
		}
		v.Mode = mode
	}

	var sortPref SortPreference
	if ok, err := s.Get(KeySort, &sortPref); err != nil {
		return base, err
	} else if ok {
		key, err := navigation.ParseSortKey(string(sortPref.Key))
		if err != nil {
			return base, err
		}
		order, err := navigation.ParseSortOrder(string(sortPref.Order))
		if err != nil {
			return base, err
		}
		v.Sort, v.Order = key, order
	}

	if _, err := s.Get(KeyShowHidden, &v.ShowHidden); err != nil {
		return base, err
	}
	return v, nil
}

// SaveView stores the mode, sort and hidden-file preferences of v
func SaveView(s *Store, v navigation.View) error {
	if err := s.Set(KeyViewMode, v.Mode); err != nil {
		return err
	}
	if err := s.Set(KeySort, SortPreference{Key: v.Sort, Order: v.Order}); err != nil {
		return err
	}
	return s.Set(KeyShowHidden, v.ShowHidden)
}

// Favorites returns the favorite folder paths
func Favorites(s *Store) ([]string, error) {
	var paths []string
	if _, err := s.Get(KeyFavorites, &paths); err != nil {
		return nil, err
	}
	return paths, nil
}

// AddFavorite appends p if it is not a favorite yet
func AddFavorite(s *Store, p string) error {
	paths, err := Favorites(s)
	if err != nil {
		return err
	}
	p = tree.Normalize(p)
	if slices.Contains(paths, p) {
		return nil
	}
	return s.Set(KeyFavorites, append(paths, p))
}

// RemoveFavorite drops p and any favorite below it
func RemoveFavorite(s *Store, p string) error {
	paths, err := Favorites(s)
	if err != nil {
		return err
	}
	p = tree.Normalize(p)
	kept := paths[:0]
	for _, fav := range paths {
		if fav != p && !tree.IsAncestor(p, fav) {
			kept = append(kept, fav)
		}
	}
	return s.Set(KeyFavorites, kept)
}

// RebaseFavorites rewrites favorites after a folder rename or move
func RebaseFavorites(s *Store, oldPath, newPath string) error {
	paths, err := Favorites(s)
	if err != nil || len(paths) == 0 {
		return err
	}
	changed := false
	for i, fav := range paths {
		if rebased := tree.Rebase(fav, oldPath, newPath); rebased != fav {
			paths[i] = rebased
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.Set(KeyFavorites, paths)
}
