package storage

import (
	"time"

	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

type seedEntry struct {
	path string
	size int64
	age  time.Duration
}

// seedEntries lists the demo workspace; folders end with "/"
var seedEntries = []seedEntry{
	{"/apps/", 0, 72 * time.Hour},
	{"/apps/fl-client/", 0, 48 * time.Hour},
	{"/apps/fl-client/run.sh", 812, 48 * time.Hour},
	{"/apps/fl-client/config.json", 356, 47 * time.Hour},
	{"/datasites/", 0, 96 * time.Hour},
	{"/datasites/alice@openmined.org/", 0, 96 * time.Hour},
	{"/datasites/alice@openmined.org/public/", 0, 90 * time.Hour},
	{"/datasites/alice@openmined.org/public/README.md", 1240, 30 * time.Hour},
	{"/datasites/alice@openmined.org/public/datasets/", 0, 26 * time.Hour},
	{"/datasites/alice@openmined.org/public/datasets/census.csv", 5 << 20, 26 * time.Hour},
	{"/datasites/alice@openmined.org/public/datasets/schema.yaml", 2048, 25 * time.Hour},
	{"/datasites/alice@openmined.org/private/", 0, 90 * time.Hour},
	{"/datasites/alice@openmined.org/private/notes.txt", 512, 2 * time.Hour},
	{"/datasites/alice@openmined.org/private/.env", 64, 2 * time.Hour},
	{"/datasites/bob@openmined.org/", 0, 80 * time.Hour},
	{"/datasites/bob@openmined.org/public/", 0, 80 * time.Hour},
	{"/datasites/bob@openmined.org/public/model.pkl", 12 << 20, 10 * time.Hour},
	{"/datasites/bob@openmined.org/public/results.json", 4096, time.Hour},
	{"/logs/", 0, 24 * time.Hour},
	{"/logs/syftbox.log", 64 << 10, 5 * time.Minute},
}

// SeedTree builds the demo workspace used by a fresh memory backend
func SeedTree(now time.Time) *models.FileSystemItem {
	root := &models.FileSystemItem{
		ID:         PathID(tree.Root),
		Path:       tree.Root,
		Type:       models.TypeFolder,
		CreatedAt:  now.Add(-100 * time.Hour),
		ModifiedAt: now.Add(-100 * time.Hour),
		SyncStatus: models.StatusSynced,
		Children:   []*models.FileSystemItem{},
	}
	for _, e := range seedEntries {
		isFolder := e.path[len(e.path)-1] == '/'
		p := tree.Normalize(e.path)
		item := &models.FileSystemItem{
			ID:         PathID(p),
			Name:       tree.Base(p),
			Path:       p,
			Type:       models.TypeFile,
			Size:       e.size,
			CreatedAt:  now.Add(-e.age),
			ModifiedAt: now.Add(-e.age),
			SyncStatus: models.StatusSynced,
		}
		if isFolder {
			item.Type = models.TypeFolder
			item.Children = []*models.FileSystemItem{}
		}
		parent := tree.FindByPath(root, tree.Parent(p))
		parent.Children = append(parent.Children, item)
	}
	return root
}
