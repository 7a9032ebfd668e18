package storetest

import (
	"bengaliboutique_server/repository"
	"bengaliboutique_server/services"
	"bengaliboutique_server/structs"
	"bengaliboutique_server/structs/tables"
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Carts is an in-memory CartStore.
type Carts struct {
	mu    sync.Mutex
	carts map[string]structs.Cart

	// FailClear makes Clear return this error.
	FailClear error
}

var _ repository.CartStore = (*Carts)(nil)

func NewCarts() *Carts {
	return &Carts{carts: make(map[string]structs.Cart)}
}

func (c *Carts) Load(_ context.Context, sessionID string) (structs.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.carts[sessionID].Clone(), nil
}

func (c *Carts) Save(_ context.Context, sessionID string, cart structs.Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(cart) == 0 {
		delete(c.carts, sessionID)
		return nil
	}
	c.carts[sessionID] = cart.Clone()
	return nil
}

func (c *Carts) Clear(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailClear != nil {
		return c.FailClear
	}
	delete(c.carts, sessionID)
	return nil
}

// Put replaces a session cart directly.
func (c *Carts) Put(sessionID string, cart structs.Cart) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.carts[sessionID] = cart.Clone()
}

// Outbox records sent messages. Subjects listed in Fail return the mapped error.
type Outbox struct {
	mu   sync.Mutex
	Sent []services.Message
	Fail map[string]error
}

var _ services.Notifier = (*Outbox)(nil)

func NewOutbox() *Outbox {
	return &Outbox{Fail: make(map[string]error)}
}

func (o *Outbox) Send(_ context.Context, msg services.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err, ok := o.Fail[msg.Subject]; ok {
		return err
	}
	o.Sent = append(o.Sent, msg)
	return nil
}

func (o *Outbox) Messages() []services.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]services.Message(nil), o.Sent...)
}

// Events records published order events.
type Events struct {
	mu        sync.Mutex
	Published []services.OrderEvent
	Err       error
}

var _ services.EventPublisher = (*Events)(nil)

func (e *Events) PublishOrderEvent(_ context.Context, event services.OrderEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return e.Err
	}
	e.Published = append(e.Published, event)
	return nil
}

func (e *Events) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Published)
}

const pending = "pending"

// Idempotency is an in-memory IdempotencyStore. TTLs are ignored.
type Idempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

var _ services.IdempotencyStore = (*Idempotency)(nil)

func NewIdempotency() *Idempotency {
	return &Idempotency{keys: make(map[string]string)}
}

func (i *Idempotency) Claim(_ context.Context, key string, _ time.Duration) (bool, uuid.UUID, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	val, ok := i.keys[key]
	if !ok {
		i.keys[key] = pending
		return true, uuid.Nil, nil
	}
	if val == pending {
		return false, uuid.Nil, nil
	}
	id, err := uuid.Parse(val)
	return false, id, err
}

func (i *Idempotency) Complete(_ context.Context, key string, orderID uuid.UUID, _ time.Duration) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.keys[key] = orderID.String()
	return nil
}

func (i *Idempotency) Release(_ context.Context, key string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.keys, key)
	return nil
}

// ProductCache is an in-memory ProductCache that counts hits.
type ProductCache struct {
	mu       sync.Mutex
	products map[string]tables.Product
	Hits     int
}

var _ services.ProductCache = (*ProductCache)(nil)

func NewProductCache() *ProductCache {
	return &ProductCache{products: make(map[string]tables.Product)}
}

func (c *ProductCache) GetProduct(_ context.Context, slug string) (*tables.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[slug]
	if !ok {
		return nil, nil
	}
	c.Hits++
	return &p, nil
}

func (c *ProductCache) SetProduct(_ context.Context, product *tables.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.products[product.Slug] = *product
	return nil
}

func (c *ProductCache) InvalidateProducts(_ context.Context, slugs ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, slug := range slugs {
		delete(c.products, slug)
	}
	return nil
}

func (c *ProductCache) Has(slug string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.products[slug]
	return ok
}
