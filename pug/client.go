// Package pug is the Pug Video API client. Each resource type has a Service
// that fetches, lists, creates, saves and deletes typed models; the models
// track local edits and send them back as JSON Patch documents.
//
//	client, err := pug.NewClient(cfg)
//	video, err := client.Videos.Get(ctx, "v_123")
//	_ = video.SetTitle("Pugs at the beach")
//	err = client.Videos.Save(ctx, video)
package pug

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pugvideo/pugvideo-go/config"
	httptransport "github.com/pugvideo/pugvideo-go/internal/providers/transport/http"
	"github.com/pugvideo/pugvideo-go/patch"
	"github.com/pugvideo/pugvideo-go/resource"
	"github.com/pugvideo/pugvideo-go/transport"
)

const defaultPageSize = 50

type Client struct {
	transport transport.Transport
	style     patch.Style
	pageSize  int
	kinds     map[string]resource.Kind

	Videos           *Service[*Video]
	Namespaces       *Service[*Namespace]
	Livestreams      *Service[*Livestream]
	Campaigns        *Service[*Campaign]
	Webhooks         *Service[*Webhook]
	Playlists        *Service[*Playlist]
	SimulcastTargets *Service[*SimulcastTarget]
}

type clientOptions struct {
	style            patch.Style
	styleSet         bool
	pageSize         int
	kinds            []resource.Kind
	transportOptions []httptransport.Option
}

type Option func(*clientOptions)

// WithPatchStyle overrides the patch-key-style from the configuration.
func WithPatchStyle(style patch.Style) Option {
	return func(o *clientOptions) {
		o.style = style
		o.styleSet = true
	}
}

// WithPageSize sets the page[size] sent by List. Zero leaves the parameter
// out.
func WithPageSize(size int) Option {
	return func(o *clientOptions) {
		o.pageSize = size
	}
}

// WithKind registers a kind or replaces a built-in one with the same name.
func WithKind(kind resource.Kind) Option {
	return func(o *clientOptions) {
		o.kinds = append(o.kinds, kind)
	}
}

// WithLogger is passed to the HTTP transport built by NewClient.
func WithLogger(logger logr.Logger) Option {
	return func(o *clientOptions) {
		o.transportOptions = append(o.transportOptions, httptransport.WithLogger(logger))
	}
}

// WithMetrics is passed to the HTTP transport built by NewClient.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(o *clientOptions) {
		o.transportOptions = append(o.transportOptions, httptransport.WithMetrics(registerer))
	}
}

func collectOptions(opts []Option) clientOptions {
	options := clientOptions{pageSize: defaultPageSize}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&options)
	}
	return options
}

// NewClient builds a client that talks to the API over HTTP.
func NewClient(cfg config.Client, opts ...Option) (*Client, error) {
	cfg = cfg.WithDefaults()
	options := collectOptions(opts)

	if !options.styleSet {
		style, err := patch.ParseStyle(cfg.PatchKeyStyle)
		if err != nil {
			return nil, err
		}
		options.style = style
	}

	httpTransport, err := httptransport.NewHTTPTransport(cfg, options.transportOptions...)
	if err != nil {
		return nil, err
	}
	return newClient(httpTransport, options), nil
}

// NewClientWithTransport builds a client on any transport implementation.
func NewClientWithTransport(t transport.Transport, opts ...Option) *Client {
	return newClient(t, collectOptions(opts))
}

func newClient(t transport.Transport, options clientOptions) *Client {
	client := &Client{
		transport: t,
		style:     options.style,
		pageSize:  options.pageSize,
		kinds:     map[string]resource.Kind{},
	}
	for _, kind := range BuiltinKinds() {
		client.kinds[kind.Name] = cloneKind(kind)
	}
	for _, kind := range options.kinds {
		client.kinds[kind.Name] = cloneKind(kind)
	}

	client.Videos = newService(client, client.kinds[VideoKind.Name], func(r *resource.Resource) *Video { return &Video{r} })
	client.Namespaces = newService(client, client.kinds[NamespaceKind.Name], func(r *resource.Resource) *Namespace { return &Namespace{r} })
	client.Livestreams = newService(client, client.kinds[LivestreamKind.Name], func(r *resource.Resource) *Livestream { return &Livestream{r} })
	client.Campaigns = newService(client, client.kinds[CampaignKind.Name], func(r *resource.Resource) *Campaign { return &Campaign{r} })
	client.Webhooks = newService(client, client.kinds[WebhookKind.Name], func(r *resource.Resource) *Webhook { return &Webhook{r} })
	client.Playlists = newService(client, client.kinds[PlaylistKind.Name], func(r *resource.Resource) *Playlist { return &Playlist{r} })
	client.SimulcastTargets = newService(client, client.kinds[SimulcastTargetKind.Name], func(r *resource.Resource) *SimulcastTarget {
		return &SimulcastTarget{r}
	})
	return client
}

func (c *Client) Transport() transport.Transport { return c.transport }

func (c *Client) PatchStyle() patch.Style { return c.style }

// Kind looks a kind up by name. The JSON:API type and plural forms such as
// "videos" are accepted too.
func (c *Client) Kind(name string) (resource.Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if kind, ok := c.kinds[normalized]; ok {
		return cloneKind(kind), nil
	}
	for _, kind := range c.kinds {
		if kind.Type == normalized || kind.Name+"s" == normalized || strings.ReplaceAll(kind.Type, "_", "-") == normalized {
			return cloneKind(kind), nil
		}
	}
	return resource.Kind{}, notFoundError(fmt.Sprintf("unknown resource kind %q", name), nil)
}

// Kinds returns the registered kinds sorted by name.
func (c *Client) Kinds() []resource.Kind {
	kinds := make([]resource.Kind, 0, len(c.kinds))
	for _, kind := range c.kinds {
		kinds = append(kinds, cloneKind(kind))
	}
	slices.SortFunc(kinds, func(a, b resource.Kind) int { return strings.Compare(a.Name, b.Name) })
	return kinds
}

// Generic returns an untyped service for kind.
func (c *Client) Generic(kind resource.Kind) *Service[*Generic] {
	return newService(c, cloneKind(kind), func(r *resource.Resource) *Generic { return &Generic{r} })
}
