package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/OpenMined/SyftUI-sub000/pkg/history"
	"github.com/OpenMined/SyftUI-sub000/pkg/logging"
	"github.com/OpenMined/SyftUI-sub000/pkg/metrics"
	"github.com/OpenMined/SyftUI-sub000/pkg/models"
	"github.com/OpenMined/SyftUI-sub000/pkg/mutate"
	"github.com/OpenMined/SyftUI-sub000/pkg/ratelimit"
	"github.com/OpenMined/SyftUI-sub000/pkg/storage"
	"github.com/OpenMined/SyftUI-sub000/pkg/tree"
)

// uploadRequest is the input of an upload, kept while a conflict on its
// name is pending
type uploadRequest struct {
	id   string
	dest string
	name string
	size int64
	r    io.Reader
}

// Upload writes the content of r as a file named name in destPath, or in
// the current folder when destPath is empty. size is the content length,
// or -1 when unknown. When the name is taken the upload is held as a
// pending conflict and r must stay readable until it is resolved.
func (s *Store) Upload(ctx context.Context, destPath, name string, r io.Reader, size int64) (*models.FileSystemItem, error) {
	if err := mutate.ValidateName(name); err != nil {
		return nil, err
	}
	if destPath == "" {
		destPath = s.nav.Current()
	}
	req := &uploadRequest{
		id:   uuid.NewString(),
		dest: tree.Normalize(destPath),
		name: name,
		size: size,
		r:    r,
	}
	return s.upload(ctx, req, nil)
}

func (s *Store) upload(ctx context.Context, req *uploadRequest, plan *mutate.Plan) (*models.FileSystemItem, error) {
	name, overwrite := req.name, false
	if plan != nil {
		if plan.Skipped(req.id) {
			s.finish(ctx, models.OpUpload, nil, logging.Fields{"name": req.name, "skipped": true})
			return nil, nil
		}
		if renamed, ok := plan.Names[req.id]; ok {
			name = renamed
		}
		overwrite = len(plan.Replace) > 0
	}
	fields := logging.Fields{"path": tree.Join(req.dest, name), "size": req.size}

	if err := s.startUpload(req, name, overwrite); err != nil {
		s.finish(ctx, models.OpUpload, err, fields)
		return nil, err
	}

	metrics.UploadStarted()
	defer metrics.UploadFinished()

	reader := ratelimit.NewProgressReader(ratelimit.NewReader(ctx, req.r, s.limiter), req.size, func(read int64, percent int) {
		s.setUploadProgress(req.id, percent)
	})
	err := s.timed(ctx, "write", func(ctx context.Context) error {
		_, err := s.backend.Write(ctx, tree.Join(req.dest, name), reader, req.size, storage.Options{Overwrite: overwrite})
		return err
	})
	metrics.RecordUploadBytes(reader.BytesRead())
	if err != nil {
		s.endUpload(req.id, models.UploadError)
		s.finish(ctx, models.OpUpload, err, fields)
		s.notify(LevelError, fmt.Sprintf("Could not upload %s: %v", name, err))
		if rerr := s.Refresh(ctx); rerr != nil {
			s.logger.Error(ctx, "Refresh after failed upload failed", rerr, nil)
		}
		return nil, err
	}
	s.endUpload(req.id, models.UploadCompleted)

	s.opMu.Lock()
	defer s.opMu.Unlock()
	var uploaded *models.FileSystemItem
	_, err = s.edit(func(root *models.FileSystemItem) (*models.FileSystemItem, history.Command, error) {
		work := root
		var replaced []mutate.Placement
		if folder := tree.FindByPath(root, req.dest); folder != nil {
			if existing := folder.Child(name); existing != nil {
				work, replaced = mutate.Remove(root, []string{existing.ID})
			}
		}
		now := s.env.Now()
		file := &models.FileSystemItem{
			ID:         s.env.NewID(),
			Name:       name,
			Type:       models.TypeFile,
			Size:       reader.BytesRead(),
			CreatedAt:  now,
			ModifiedAt: now,
			SyncStatus: models.StatusPending,
		}
		newRoot, added, err := mutate.AddItem(work, req.dest, file, models.OpUpload)
		if err != nil {
			return nil, nil, err
		}
		uploaded = added
		return newRoot, history.NewUpload(replaced, mutate.PlacementsOf(newRoot, []string{added.ID})), nil
	})
	s.finish(ctx, models.OpUpload, err, fields)
	if err != nil {
		// the backend has the file, the local tree could not take it
		if rerr := s.refresh(ctx); rerr != nil {
			s.logger.Error(ctx, "Refresh after upload failed", rerr, nil)
		}
		return nil, err
	}
	return uploaded, nil
}

// startUpload checks the destination and lists the upload. A taken name
// becomes the pending conflict batch.
func (s *Store) startUpload(req *uploadRequest, name string, overwrite bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.root == nil {
		return ErrNotLoaded
	}
	dest, ok := s.index.LookupPath(req.dest)
	if !ok {
		return fmt.Errorf("upload to %s: %w", req.dest, models.ErrNotFound)
	}
	if !dest.IsFolder() {
		return fmt.Errorf("upload to %s: %w", req.dest, models.ErrNotFolder)
	}

	if existing := dest.Child(name); existing != nil && !overwrite {
		conflict := &models.ConflictItem{
			Incoming: &models.FileSystemItem{
				ID:   req.id,
				Name: name,
				Type: models.TypeFile,
				Path: tree.Join(dest.Path, name),
				Size: req.size,
			},
			Existing:   existing,
			TargetPath: dest.Path,
			Operation:  models.OpUpload,
			DetectedAt: s.env.Now(),
		}
		s.pending = &batch{
			op:        models.OpUpload,
			dest:      req.dest,
			upload:    req,
			conflicts: []*models.ConflictItem{conflict},
		}
		s.publish(Change{Kind: ChangeConflict, Op: models.OpUpload, IDs: []string{req.id}})
		return &models.ConflictError{Conflicts: []*models.ConflictItem{conflict}}
	}

	s.uploads = append(s.uploads, &models.UploadItem{
		ID:     req.id,
		Name:   name,
		Size:   req.size,
		Status: models.UploadUploading,
	})
	s.publish(Change{Kind: ChangeUpload, IDs: []string{req.id}})
	return nil
}

func (s *Store) setUploadProgress(id string, percent int) {
	if percent < 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.uploads {
		if u.ID == id && u.Progress != percent {
			u.Progress = percent
			s.publish(Change{Kind: ChangeUpload, IDs: []string{id}})
		}
	}
}

// endUpload sets the final status. Completed uploads are dropped after
// the grace period; failed ones stay until ClearUploads.
func (s *Store) endUpload(id string, status models.UploadStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.uploads {
		if u.ID != id {
			continue
		}
		u.Status = status
		if status == models.UploadCompleted {
			u.Progress = 100
			if !s.closed {
				s.uploadTimers[id] = time.AfterFunc(s.uploadGrace, func() { s.dropUpload(id) })
			}
		}
		s.publish(Change{Kind: ChangeUpload, IDs: []string{id}})
	}
}

func (s *Store) dropUpload(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uploadTimers, id)
	for i, u := range s.uploads {
		if u.ID == id {
			s.uploads = append(s.uploads[:i:i], s.uploads[i+1:]...)
			s.publish(Change{Kind: ChangeUpload, IDs: []string{id}})
			return
		}
	}
}

// Uploads returns the listed uploads, oldest first
func (s *Store) Uploads() []models.UploadItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.UploadItem, len(s.uploads))
	for i, u := range s.uploads {
		out[i] = *u
	}
	return out
}

// ClearUploads drops every finished upload
func (s *Store) ClearUploads() {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.uploads[:0:0]
	for _, u := range s.uploads {
		if u.Status == models.UploadUploading {
			kept = append(kept, u)
			continue
		}
		if t, ok := s.uploadTimers[u.ID]; ok {
			t.Stop()
			delete(s.uploadTimers, u.ID)
		}
	}
	s.uploads = kept
	s.publish(Change{Kind: ChangeUpload})
}
