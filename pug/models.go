package pug

import (
	"time"

	"github.com/pugvideo/pugvideo-go/attrs"
	"github.com/pugvideo/pugvideo-go/resource"
)

// Generic is a model without typed accessors, used for kinds registered at
// runtime.
type Generic struct{ *resource.Resource }

func (g *Generic) base() *resource.Resource { return g.Resource }

type Video struct{ *resource.Resource }

func (v *Video) base() *resource.Resource { return v.Resource }

func (v *Video) Title() string { return v.String("title") }
func (v *Video) SetTitle(title string) error { return v.Set("title", title) }
func (v *Video) Description() string { return v.String("description") }
func (v *Video) SetDescription(d string) error { return v.Set("description", d) }
func (v *Video) NamespaceID() string { return v.String("namespace_id") }
func (v *Video) SetNamespaceID(id string) error { return v.Set("namespace_id", id) }
func (v *Video) Visibility() string { return v.String("visibility") }
func (v *Video) SetVisibility(vis string) error { return v.Set("visibility", vis) }
func (v *Video) Status() string { return v.String("status") }
func (v *Video) ThumbnailURL() string { return v.String("thumbnail_url") }

// Duration is reported by the API in seconds.
func (v *Video) Duration() time.Duration {
	return time.Duration(v.Float("duration") * float64(time.Second))
}

func (v *Video) Size() int64 { return v.Int("size") }

func (v *Video) Tags() []string { return stringList(v.Resource, "tags") }

func (v *Video) SetTags(tags ...string) error { return v.Set("tags", tags) }

// Metadata returns the tracked metadata map; writes to it mark the video
// dirty. It reports false when the video has no metadata yet.
func (v *Video) Metadata() (*attrs.Map, bool) { return v.Map("metadata") }

// EnsureMetadata returns the tracked metadata map, adding an empty one when
// the field is missing or null.
func (v *Video) EnsureMetadata() (*attrs.Map, error) { return ensureMap(v.Resource, "metadata") }

// PlaybackURLs maps a rendition name to its URL. The result is a detached
// copy because the field is server-managed.
func (v *Video) PlaybackURLs() map[string]string { return stringMap(v.Resource, "playback_urls") }

func (v *Video) CreatedAt() time.Time { return timeField(v.Resource, "created_at") }
func (v *Video) UpdatedAt() time.Time { return timeField(v.Resource, "updated_at") }

type Namespace struct{ *resource.Resource }

func (n *Namespace) base() *resource.Resource { return n.Resource }

func (n *Namespace) Name() string { return n.String("name") }
func (n *Namespace) SetName(name string) error { return n.Set("name", name) }
func (n *Namespace) Description() string { return n.String("description") }
func (n *Namespace) SetDescription(d string) error { return n.Set("description", d) }
func (n *Namespace) VideoCount() int64 { return n.Int("video_count") }
func (n *Namespace) Metadata() (*attrs.Map, bool) { return n.Map("metadata") }
func (n *Namespace) EnsureMetadata() (*attrs.Map, error) { return ensureMap(n.Resource, "metadata") }
func (n *Namespace) CreatedAt() time.Time { return timeField(n.Resource, "created_at") }

type Livestream struct{ *resource.Resource }

func (l *Livestream) base() *resource.Resource { return l.Resource }

func (l *Livestream) Title() string { return l.String("title") }
func (l *Livestream) SetTitle(title string) error { return l.Set("title", title) }
func (l *Livestream) NamespaceID() string { return l.String("namespace_id") }
func (l *Livestream) SetNamespaceID(id string) error { return l.Set("namespace_id", id) }
func (l *Livestream) LatencyMode() string { return l.String("latency_mode") }
func (l *Livestream) SetLatencyMode(mode string) error { return l.Set("latency_mode", mode) }
func (l *Livestream) RecordingEnabled() bool { return l.Bool("recording_enabled") }
func (l *Livestream) SetRecordingEnabled(on bool) error {
	return l.Set("recording_enabled", on)
}
func (l *Livestream) Status() string { return l.String("status") }
func (l *Livestream) StreamKey() string { return l.String("stream_key") }
func (l *Livestream) IngestURL() string { return l.String("ingest_url") }
func (l *Livestream) PlaybackURLs() map[string]string { return stringMap(l.Resource, "playback_urls") }
func (l *Livestream) Metadata() (*attrs.Map, bool) { return l.Map("metadata") }
func (l *Livestream) EnsureMetadata() (*attrs.Map, error) { return ensureMap(l.Resource, "metadata") }

type Campaign struct{ *resource.Resource }

func (c *Campaign) base() *resource.Resource { return c.Resource }

func (c *Campaign) Name() string { return c.String("name") }
func (c *Campaign) SetName(name string) error { return c.Set("name", name) }
func (c *Campaign) Budget() float64 { return c.Float("budget") }
func (c *Campaign) SetBudget(budget float64) error { return c.Set("budget", budget) }
func (c *Campaign) StartsAt() time.Time { return timeField(c.Resource, "starts_at") }
func (c *Campaign) SetStartsAt(at time.Time) error { return c.Set("starts_at", at) }
func (c *Campaign) EndsAt() time.Time { return timeField(c.Resource, "ends_at") }
func (c *Campaign) SetEndsAt(at time.Time) error { return c.Set("ends_at", at) }
func (c *Campaign) VideoIDs() []string { return stringList(c.Resource, "video_ids") }
func (c *Campaign) SetVideoIDs(ids ...string) error { return c.Set("video_ids", ids) }
func (c *Campaign) Targeting() (*attrs.Map, bool) { return c.Map("targeting") }
func (c *Campaign) EnsureTargeting() (*attrs.Map, error) { return ensureMap(c.Resource, "targeting") }
func (c *Campaign) Status() string { return c.String("status") }
func (c *Campaign) Impressions() int64 { return c.Int("impressions") }

type Webhook struct{ *resource.Resource }

func (w *Webhook) base() *resource.Resource { return w.Resource }

func (w *Webhook) URL() string { return w.String("url") }
func (w *Webhook) SetURL(url string) error { return w.Set("url", url) }
func (w *Webhook) Events() []string { return stringList(w.Resource, "events") }
func (w *Webhook) SetEvents(events ...string) error { return w.Set("events", events) }
func (w *Webhook) Enabled() bool { return w.Bool("enabled") }
func (w *Webhook) SetEnabled(enabled bool) error { return w.Set("enabled", enabled) }
func (w *Webhook) SetSecret(secret string) error { return w.Set("secret", secret) }
func (w *Webhook) LastDeliveryAt() time.Time { return timeField(w.Resource, "last_delivery_at") }

type Playlist struct{ *resource.Resource }

func (p *Playlist) base() *resource.Resource { return p.Resource }

func (p *Playlist) Title() string { return p.String("title") }
func (p *Playlist) SetTitle(title string) error { return p.Set("title", title) }
func (p *Playlist) Visibility() string { return p.String("visibility") }
func (p *Playlist) SetVisibility(vis string) error { return p.Set("visibility", vis) }
func (p *Playlist) VideoIDs() []string { return stringList(p.Resource, "video_ids") }
func (p *Playlist) SetVideoIDs(ids ...string) error { return p.Set("video_ids", ids) }
func (p *Playlist) ItemCount() int64 { return p.Int("item_count") }
func (p *Playlist) Metadata() (*attrs.Map, bool) { return p.Map("metadata") }
func (p *Playlist) EnsureMetadata() (*attrs.Map, error) { return ensureMap(p.Resource, "metadata") }

// AppendVideo adds id to the tracked video_ids list.
func (p *Playlist) AppendVideo(id string) error {
	list, ok := p.List("video_ids")
	if !ok {
		return p.Set("video_ids", []string{id})
	}
	return list.Append(id)
}

type SimulcastTarget struct{ *resource.Resource }

func (s *SimulcastTarget) base() *resource.Resource { return s.Resource }

func (s *SimulcastTarget) Name() string { return s.String("name") }
func (s *SimulcastTarget) SetName(name string) error { return s.Set("name", name) }
func (s *SimulcastTarget) LivestreamID() string { return s.String("livestream_id") }
func (s *SimulcastTarget) SetLivestreamID(id string) error { return s.Set("livestream_id", id) }
func (s *SimulcastTarget) URL() string { return s.String("url") }
func (s *SimulcastTarget) SetURL(url string) error { return s.Set("url", url) }
func (s *SimulcastTarget) SetStreamKey(key string) error { return s.Set("stream_key", key) }
func (s *SimulcastTarget) Enabled() bool { return s.Bool("enabled") }
func (s *SimulcastTarget) SetEnabled(enabled bool) error { return s.Set("enabled", enabled) }
func (s *SimulcastTarget) Status() string { return s.String("status") }

func timeField(r *resource.Resource, field string) time.Time {
	value, _ := r.Time(field)
	return value
}

func stringList(r *resource.Resource, field string) []string {
	list, ok := r.List(field)
	if !ok {
		return nil
	}
	values := make([]string, 0, list.Len())
	for _, item := range list.All() {
		if text, ok := item.(string); ok {
			values = append(values, text)
		}
	}
	return values
}

func stringMap(r *resource.Resource, field string) map[string]string {
	nested, ok := r.Map(field)
	if !ok {
		return nil
	}
	values := make(map[string]string, nested.Len())
	for key, item := range nested.All() {
		if text, ok := item.(string); ok {
			values[key] = text
		}
	}
	return values
}

// ensureMap is the only accessor in this file that writes: it adds an empty
// map when field is missing or null.
func ensureMap(r *resource.Resource, field string) (*attrs.Map, error) {
	if nested, ok := r.Map(field); ok {
		return nested, nil
	}
	if err := r.Set(field, map[string]any{}); err != nil {
		return nil, err
	}
	nested, _ := r.Map(field)
	return nested, nil
}
