package offline

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/five82/technician/internal/espm"
)

// Provider is the shared data container: it reads through to the remote
// service and answers from the offline cache when the service is
// unreachable. Edits made while offline are queued and replayed by Flush.
type Provider struct {
	remote       espm.Service
	cache        *Cache
	log          zerolog.Logger
	forceOffline bool

	mu      sync.RWMutex
	offline bool

	// writeMu orders UpdateProduct against Flush; the pending list is
	// only rewritten while it is held.
	writeMu sync.Mutex
}

// Options configure a Provider.
type Options struct {
	// ForceOffline never contacts the remote service.
	ForceOffline bool
	Logger       zerolog.Logger
}

// NewProvider builds a Provider. Both remote and cache are required.
func NewProvider(remote espm.Service, cache *Cache, opts Options) (*Provider, error) {
	if remote == nil {
		return nil, fmt.Errorf("offline provider requires a remote service")
	}
	if cache == nil {
		return nil, fmt.Errorf("offline provider requires a cache")
	}
	return &Provider{
		remote:       remote,
		cache:        cache,
		log:          opts.Logger.With().Str("component", "offline").Logger(),
		forceOffline: opts.ForceOffline,
		offline:      opts.ForceOffline,
	}, nil
}

// Offline reports whether the last remote call fell back to the cache.
func (p *Provider) Offline() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.offline
}

func (p *Provider) setOffline(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.forceOffline {
		v = true
	}
	p.offline = v
}

// Products returns the product list, remote first. Pending offline edits are
// overlaid on cached results so the list reflects them.
func (p *Provider) Products(ctx context.Context) ([]espm.Product, error) {
	if !p.forceOffline {
		if err := p.Flush(ctx); err != nil {
			p.log.Warn().Err(err).Msg("flush pending edits failed")
		}
		products, err := p.remote.Products(ctx)
		if err == nil {
			p.setOffline(false)
			if err := p.cache.update(func(d *document) { d.Products = products }); err != nil {
				p.log.Warn().Err(err).Msg("cache products failed")
			}
			return products, nil
		}
		if !errors.Is(err, espm.ErrUnavailable) {
			return nil, &espm.LoadError{Op: "load products", Err: err}
		}
		p.log.Warn().Err(err).Msg("service unavailable, serving cached products")
	}

	p.setOffline(true)
	doc, err := p.cache.read()
	if err != nil {
		return nil, &espm.LoadError{Op: "load products", Err: err}
	}
	return overlayPending(doc.Products, doc.Pending), nil
}

// SalesOrders returns the sales order headers, remote first.
func (p *Provider) SalesOrders(ctx context.Context) ([]espm.SalesOrderHeader, error) {
	if !p.forceOffline {
		orders, err := p.remote.SalesOrderHeaders(ctx)
		if err == nil {
			p.setOffline(false)
			if err := p.cache.update(func(d *document) { d.SalesOrders = orders }); err != nil {
				p.log.Warn().Err(err).Msg("cache sales orders failed")
			}
			return orders, nil
		}
		if !errors.Is(err, espm.ErrUnavailable) {
			return nil, &espm.LoadError{Op: "load sales orders", Err: err}
		}
		p.log.Warn().Err(err).Msg("service unavailable, serving cached sales orders")
	}

	p.setOffline(true)
	doc, err := p.cache.read()
	if err != nil {
		return nil, &espm.LoadError{Op: "load sales orders", Err: err}
	}
	return doc.SalesOrders, nil
}

// UpdateProduct saves product remotely. When the service is unreachable the
// edit is queued and applied to the cached list instead.
func (p *Provider) UpdateProduct(ctx context.Context, product espm.Product) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	if !p.forceOffline {
		err := p.remote.UpdateProduct(ctx, product)
		if err == nil {
			p.setOffline(false)
			if err := p.cache.update(func(d *document) { d.Products = replaceProduct(d.Products, product) }); err != nil {
				p.log.Warn().Err(err).Msg("cache updated product failed")
			}
			return nil
		}
		if !errors.Is(err, espm.ErrUnavailable) {
			return fmt.Errorf("update product %s: %w", product.ProductID, err)
		}
		p.log.Warn().Err(err).Str("product", product.ProductID).Msg("service unavailable, queueing edit")
	}

	p.setOffline(true)
	err := p.cache.update(func(d *document) {
		d.Pending = replaceProduct(d.Pending, product)
		d.Products = replaceProduct(d.Products, product)
	})
	if err != nil {
		return fmt.Errorf("queue product %s: %w", product.ProductID, err)
	}
	return nil
}

// PendingCount returns the number of edits waiting to be sent.
func (p *Provider) PendingCount() int {
	doc, err := p.cache.read()
	if err != nil {
		return 0
	}
	return len(doc.Pending)
}

// Flush replays queued edits in order. It stops at the first edit the
// service cannot receive and keeps it and everything after it queued.
// Edits rejected by the service are dropped and logged. Saves wait for a
// running flush.
func (p *Provider) Flush(ctx context.Context) error {
	if p.forceOffline {
		return nil
	}
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	doc, err := p.cache.read()
	if err != nil {
		if errors.Is(err, ErrNoCache) {
			return nil
		}
		return err
	}
	if len(doc.Pending) == 0 {
		return nil
	}

	sent := make(map[string]bool, len(doc.Pending))
	var flushErr error
	for _, product := range doc.Pending {
		err := p.remote.UpdateProduct(ctx, product)
		if err == nil {
			sent[product.ProductID] = true
			continue
		}
		if errors.Is(err, espm.ErrUnavailable) {
			flushErr = err
			break
		}
		p.log.Error().Err(err).Str("product", product.ProductID).Msg("dropping rejected edit")
		sent[product.ProductID] = true
	}
	if len(sent) > 0 {
		err := p.cache.update(func(d *document) {
			d.Pending = slices.DeleteFunc(d.Pending, func(prod espm.Product) bool {
				return sent[prod.ProductID]
			})
		})
		if err != nil {
			return err
		}
		p.log.Info().Int("sent", len(sent)).Msg("flushed pending edits")
	}
	return flushErr
}

// Sync flushes queued edits, then refreshes both entity sets concurrently.
func (p *Provider) Sync(ctx context.Context) error {
	if p.forceOffline {
		return nil
	}
	if err := p.Flush(ctx); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := p.Products(gctx)
		return err
	})
	g.Go(func() error {
		_, err := p.SalesOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	p.log.Info().Dur("took", time.Since(start)).Bool("offline", p.Offline()).Msg("sync finished")
	return nil
}

// overlayPending returns products with queued edits applied.
func overlayPending(products, pending []espm.Product) []espm.Product {
	out := slices.Clone(products)
	for _, edit := range pending {
		out = replaceProduct(out, edit)
	}
	return out
}

// replaceProduct swaps the entry with the same key or appends product.
func replaceProduct(products []espm.Product, product espm.Product) []espm.Product {
	for i := range products {
		if products[i].ProductID == product.ProductID {
			products[i] = product
			return products
		}
	}
	return append(products, product)
}
