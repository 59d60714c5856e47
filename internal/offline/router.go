// Package offline keeps the dashboard usable when the server is unreachable.
//
// Router is an http.RoundTripper placed in front of the network transport of
// the dashboard client. Dynamic endpoints go to the network first and fall
// back to a synthetic {"offline":true} reply; everything else is served from
// the active cache generation when present and fetched otherwise.
package offline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"codeberg.org/mutker/energymon/internal/errors"
	"codeberg.org/mutker/energymon/internal/logger"
)

// OfflineBody is returned for dynamic endpoints when the network fails.
const OfflineBody = `{"offline":true}`

type Router struct {
	next         http.RoundTripper
	store        Store
	generation   string
	manifest     []string
	networkFirst []string
	base         *url.URL
	active       atomic.Bool
}

// Option customises a Router.
type Option func(*Router)

// WithManifest replaces DefaultManifest.
func WithManifest(manifest []string) Option {
	return func(r *Router) {
		r.manifest = append([]string(nil), manifest...)
	}
}

func NewRouter(base *url.URL, generation string, store Store, next http.RoundTripper, opts ...Option) *Router {
	if next == nil {
		next = http.DefaultTransport
	}

	r := &Router{
		next:         next,
		store:        store,
		generation:   generation,
		manifest:     DefaultManifest,
		networkFirst: NetworkFirstPrefixes,
		base:         base,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Generation returns the name of the generation this router serves.
func (r *Router) Generation() string {
	return r.generation
}

// Install pre-fetches every manifest resource into the current generation.
// Either all resources are stored or none are.
func (r *Router) Install(ctx context.Context) error {
	errFactory := errors.New()

	if err := r.store.Open(ctx, r.generation); err != nil {
		return errFactory.Wrap(ErrInstallFailed, err)
	}

	entries := make([]Entry, 0, len(r.manifest))
	for _, ref := range r.manifest {
		target, err := r.resolve(ref)
		if err != nil {
			return errFactory.Wrap(ErrInstallFailed, err)
		}

		entry, err := r.prefetch(ctx, target)
		if err != nil {
			return errFactory.Wrap(ErrInstallFailed, err)
		}
		entries = append(entries, entry)
	}

	if err := r.store.PutAll(ctx, r.generation, entries); err != nil {
		return errFactory.Wrap(ErrInstallFailed, err)
	}

	logger.Info().
		Str("generation", r.generation).
		Int("resources", len(entries)).
		Msg("Offline cache installed")

	return nil
}

// Activate deletes every generation other than the current one and starts
// routing requests. Until Activate returns, requests go straight to the
// network.
func (r *Router) Activate(ctx context.Context) error {
	errFactory := errors.New()

	keys, err := r.store.Keys(ctx)
	if err != nil {
		return errFactory.Wrap(ErrActivateFailed, err)
	}

	for _, key := range keys {
		if key == r.generation {
			continue
		}
		if _, err := r.store.Delete(ctx, key); err != nil {
			return errFactory.Wrap(ErrActivateFailed, err)
		}
		logger.Info().Str("generation", key).Msg("Deleted stale cache generation")
	}

	r.active.Store(true)

	return nil
}

// RoundTrip implements http.RoundTripper.
func (r *Router) RoundTrip(req *http.Request) (*http.Response, error) {
	if !r.active.Load() {
		return r.next.RoundTrip(req)
	}

	if r.isNetworkFirst(req.URL.Path) {
		resp, err := r.next.RoundTrip(req)
		if err != nil {
			logger.Debug().Err(err).Str("url", req.URL.String()).Msg("Network failed, answering offline")
			return offlineResponse(req), nil
		}
		return resp, nil
	}

	if req.Method == http.MethodGet {
		entry, ok, err := r.store.Match(req.Context(), r.generation, cacheKey(req.URL))
		if err != nil {
			logger.Warn().Err(err).Str("url", req.URL.String()).Msg("Cache lookup failed")
		}
		if ok {
			if req.Body != nil {
				req.Body.Close()
			}
			return entryResponse(req, entry), nil
		}
	}

	return r.next.RoundTrip(req)
}

func (r *Router) isNetworkFirst(path string) bool {
	for _, prefix := range r.networkFirst {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (r *Router) resolve(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, err
	}
	if r.base != nil {
		u = r.base.ResolveReference(u)
	}
	return u, nil
}

func (r *Router) prefetch(ctx context.Context, target *url.URL) (Entry, error) {
	errFactory := errors.New()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Entry{}, errFactory.Wrap(ErrPrefetchFailed, err)
	}

	resp, err := r.next.RoundTrip(req)
	if err != nil {
		return Entry{}, errFactory.Wrap(ErrPrefetchFailed, err).WithData(target.String())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Entry{}, errFactory.WithData(ErrPrefetchFailed, fmt.Sprintf("%s: %s", target, resp.Status))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Entry{}, errFactory.Wrap(ErrPrefetchFailed, err)
	}

	return Entry{
		URL:    cacheKey(target),
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
	}, nil
}

// cacheKey identifies a resource by its absolute URL without fragment.
func cacheKey(u *url.URL) string {
	k := *u
	k.Fragment = ""
	k.RawFragment = ""
	return k.String()
}

func offlineResponse(req *http.Request) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	return newResponse(req, http.StatusOK, header, []byte(OfflineBody))
}

func entryResponse(req *http.Request, e Entry) *http.Response {
	header := e.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return newResponse(req, e.Status, header, e.Body)
}

func newResponse(req *http.Request, code int, header http.Header, body []byte) *http.Response {
	header.Set("Content-Length", strconv.Itoa(len(body)))
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}
