package pug

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/pugvideo/pugvideo-go/faults"
	"github.com/pugvideo/pugvideo-go/resource"
)

// Model is implemented by every typed resource in this package.
type Model interface {
	base() *resource.Resource
}

// Service performs the remote operations for one kind.
type Service[T Model] struct {
	client *Client
	kind   resource.Kind
	wrap   func(*resource.Resource) T
}

func newService[T Model](client *Client, kind resource.Kind, wrap func(*resource.Resource) T) *Service[T] {
	return &Service[T]{client: client, kind: kind, wrap: wrap}
}

func (s *Service[T]) Kind() resource.Kind { return cloneKind(s.kind) }

// New returns an unsaved model. Save creates it remotely.
func (s *Service[T]) New() T {
	return s.wrap(resource.New(s.kind, s.resourceOptions()...))
}

// Load wraps a payload already fetched by the caller.
func (s *Service[T]) Load(payload any) T {
	return s.wrap(resource.Load(s.kind, payload, s.resourceOptions()...))
}

func (s *Service[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T

	itemPath, err := s.kind.ItemPath(id)
	if err != nil {
		return zero, err
	}
	response, err := s.client.transport.Get(ctx, itemPath, nil)
	if err != nil {
		return zero, err
	}
	return s.Load(response), nil
}

// Create sets attributes on a new model and saves it. Attributes are applied
// in key order so the request body is stable.
func (s *Service[T]) Create(ctx context.Context, attributes map[string]any) (T, error) {
	var zero T

	model := s.New()
	for _, field := range slices.Sorted(maps.Keys(attributes)) {
		if err := model.base().Set(field, attributes[field]); err != nil {
			return zero, err
		}
	}
	if err := s.Save(ctx, model); err != nil {
		return zero, err
	}
	return model, nil
}

// Save sends pending edits. An unsaved model is created with POST; a saved
// one is patched with the edits only, and nothing is sent when there are
// none. The model is reloaded from the response body.
func (s *Service[T]) Save(ctx context.Context, model T) error {
	r := model.base()
	if r.Frozen() {
		return faults.NewFrozenError("")
	}

	if !r.Persisted() {
		collectionPath, err := s.kind.CollectionPath()
		if err != nil {
			return err
		}
		response, err := s.client.transport.Post(ctx, collectionPath, r.CreateDocument())
		if err != nil {
			return err
		}
		if response == nil {
			return transportError(fmt.Sprintf("server created %s without returning it", s.kind.Name), nil)
		}
		if err := r.Load(response); err != nil {
			return err
		}
		if !r.Persisted() {
			return transportError(fmt.Sprintf("server created %s without returning its id", s.kind.Name), nil)
		}
		return nil
	}

	document := r.PatchDocument()
	if len(document.Data) == 0 {
		return r.Commit()
	}

	itemPath, err := s.kind.ItemPath(r.ID())
	if err != nil {
		return err
	}
	response, err := s.client.transport.Patch(ctx, itemPath, document)
	if err != nil {
		return err
	}
	// An empty response means the server accepted the edits as sent.
	if response == nil {
		return r.Commit()
	}
	return r.Load(response)
}

// Reload discards local edits and fetches the current remote state.
func (s *Service[T]) Reload(ctx context.Context, model T) error {
	r := model.base()
	if r.Frozen() {
		return faults.NewFrozenError(fmt.Sprintf("%s %s is deleted", s.kind.Name, r.ID()))
	}
	if !r.Persisted() {
		return validationError(fmt.Sprintf("%s has not been saved yet", s.kind.Name), nil)
	}

	itemPath, err := s.kind.ItemPath(r.ID())
	if err != nil {
		return err
	}
	response, err := s.client.transport.Get(ctx, itemPath, nil)
	if err != nil {
		return err
	}
	return r.Load(response)
}

// Delete removes the remote object and freezes the model.
func (s *Service[T]) Delete(ctx context.Context, model T) error {
	r := model.base()
	if r.Frozen() {
		return faults.NewFrozenError(fmt.Sprintf("%s %s is already deleted", s.kind.Name, r.ID()))
	}
	if !r.Persisted() {
		return validationError(fmt.Sprintf("%s has not been saved yet", s.kind.Name), nil)
	}

	if err := s.DeleteByID(ctx, r.ID()); err != nil {
		return err
	}
	r.Freeze()
	return nil
}

// DeleteByID removes a remote object without fetching it first.
func (s *Service[T]) DeleteByID(ctx context.Context, id string) error {
	itemPath, err := s.kind.ItemPath(id)
	if err != nil {
		return err
	}

	deleted, err := s.client.transport.Delete(ctx, itemPath)
	if err != nil {
		return err
	}
	if !deleted {
		return transportError(fmt.Sprintf("server did not confirm deletion of %s %s", s.kind.Name, id), nil)
	}
	return nil
}

func (s *Service[T]) resourceOptions() []resource.Option {
	return []resource.Option{resource.WithPatchStyle(s.client.style)}
}
