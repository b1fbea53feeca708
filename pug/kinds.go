package pug

import (
	"slices"

	"github.com/pugvideo/pugvideo-go/resource"
)

// Endpoint conventions of the Pug Video API. Callers with a different
// layout can register their own kinds through WithKind.
var (
	VideoKind = resource.Kind{
		Name: "video",
		Type: "videos",
		Path: "/videos",
		Fields: []string{
			"title", "description", "namespace_id", "visibility",
			"tags", "metadata", "thumbnail_url", "playlist_ids",
		},
		ReadOnly: []string{"status", "duration", "size", "playback_urls", "created_at", "updated_at"},
	}
	NamespaceKind = resource.Kind{
		Name:     "namespace",
		Type:     "namespaces",
		Path:     "/namespaces",
		Fields:   []string{"name", "description", "metadata"},
		ReadOnly: []string{"video_count", "created_at", "updated_at"},
	}
	LivestreamKind = resource.Kind{
		Name: "livestream",
		Type: "livestreams",
		Path: "/livestreams",
		Fields: []string{
			"title", "description", "namespace_id", "latency_mode",
			"recording_enabled", "metadata",
		},
		ReadOnly: []string{"status", "stream_key", "ingest_url", "playback_urls", "created_at", "updated_at"},
	}
	CampaignKind = resource.Kind{
		Name: "campaign",
		Type: "campaigns",
		Path: "/campaigns",
		Fields: []string{
			"name", "description", "starts_at", "ends_at",
			"budget", "targeting", "video_ids",
		},
		ReadOnly: []string{"status", "impressions", "created_at", "updated_at"},
	}
	WebhookKind = resource.Kind{
		Name:     "webhook",
		Type:     "webhooks",
		Path:     "/webhooks",
		Fields:   []string{"url", "events", "secret", "enabled", "description"},
		ReadOnly: []string{"last_delivery_at", "created_at", "updated_at"},
	}
	PlaylistKind = resource.Kind{
		Name:     "playlist",
		Type:     "playlists",
		Path:     "/playlists",
		Fields:   []string{"title", "description", "visibility", "video_ids", "metadata"},
		ReadOnly: []string{"item_count", "created_at", "updated_at"},
	}
	SimulcastTargetKind = resource.Kind{
		Name:     "simulcast-target",
		Type:     "simulcast_targets",
		Path:     "/simulcast-targets",
		Fields:   []string{"name", "livestream_id", "url", "stream_key", "enabled"},
		ReadOnly: []string{"status", "created_at", "updated_at"},
	}
)

// BuiltinKinds returns copies of the kinds every Client registers.
func BuiltinKinds() []resource.Kind {
	kinds := []resource.Kind{
		VideoKind,
		NamespaceKind,
		LivestreamKind,
		CampaignKind,
		WebhookKind,
		PlaylistKind,
		SimulcastTargetKind,
	}
	for idx := range kinds {
		kinds[idx] = cloneKind(kinds[idx])
	}
	return kinds
}

func cloneKind(kind resource.Kind) resource.Kind {
	kind.Fields = slices.Clone(kind.Fields)
	kind.ReadOnly = slices.Clone(kind.ReadOnly)
	return kind
}
