package mock

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrBootFailure is returned by NewFailingDB.
var ErrBootFailure = errors.New("simulated boot failure")

var instanceCounter atomic.Int64

func nextID() int64 {
	return instanceCounter.Add(1)
}

// Core interfaces
type Database interface {
	Connect() error
	IsConnected() bool
}

type Cache interface {
	Get(key string) interface{}
}

// Mock implementations
type MockDB struct {
	ID            int64
	isConnected   bool
	ShutdownCalls int
}

func NewMockDB() *MockDB {
	db := &MockDB{ID: nextID()}
	db.isConnected = true
	return db
}

func (m *MockDB) Connect() error {
	m.isConnected = true
	return nil
}

func (m *MockDB) IsConnected() bool {
	return m.isConnected
}

func (m *MockDB) Shutdown(ctx context.Context) error {
	m.isConnected = false
	m.ShutdownCalls++
	return nil
}

type MockCache struct {
	DB Database
}

func NewMockCache(db Database) *MockCache {
	return &MockCache{DB: db}
}

func (m *MockCache) Get(key string) interface{} {
	return nil
}

// FailingDB is a database whose constructor always fails.
type FailingDB struct {
	MockDB
}

func NewFailingDB() (*FailingDB, error) {
	return nil, ErrBootFailure
}

// Connection records being closed through io.Closer.
type Connection struct {
	Name     string
	Closed   bool
	CloseErr error
	// Log, when set, receives the name of the connection on Close.
	Log *[]string
}

func (c *Connection) Close() error {
	c.Closed = true
	if c.Log != nil {
		*c.Log = append(*c.Log, c.Name)
	}
	return c.CloseErr
}

// Transients and singletons shared by the lifetime tests
type ITransient1 interface {
	Transient1ID() int64
}

type ITransient2 interface {
	Transient2ID() int64
}

type Transient1 struct {
	ID int64
}

func NewTransient1() *Transient1 {
	return &Transient1{ID: nextID()}
}

func (t *Transient1) Transient1ID() int64 { return t.ID }

type Transient2 struct {
	ID int64
	T1 ITransient1
}

func NewTransient2(t1 ITransient1) *Transient2 {
	return &Transient2{ID: nextID(), T1: t1}
}

func (t *Transient2) Transient2ID() int64 { return t.ID }

// Singleton implements both transient contracts.
type Singleton struct {
	ID int64
}

func NewSingleton() *Singleton {
	return &Singleton{ID: nextID()}
}

func (s *Singleton) Transient1ID() int64 { return s.ID }
func (s *Singleton) Transient2ID() int64 { return s.ID }

// Root collects every implementation of both transient contracts.
type Root struct {
	T1s []ITransient1
	T2s []ITransient2
}

func NewRoot(t1s []ITransient1, t2s []ITransient2) *Root {
	return &Root{T1s: t1s, T2s: t2s}
}

// Scoped is intended to be registered with the scoped lifetime.
type Scoped struct {
	ID int64
}

func NewScoped() *Scoped {
	return &Scoped{ID: nextID()}
}

// ScopedConsumer depends on a scoped and a singleton instance.
type ScopedConsumer struct {
	Scoped    *Scoped
	Singleton *Singleton
}

func NewScopedConsumer(scoped *Scoped, singleton *Singleton) *ScopedConsumer {
	return &ScopedConsumer{Scoped: scoped, Singleton: singleton}
}

// Missing dependencies
type MissingDependency interface {
	Missing()
}

type NeedsMissing struct {
	Dep MissingDependency
}

func NewNeedsMissing(dep MissingDependency) *NeedsMissing {
	return &NeedsMissing{Dep: dep}
}

type NeedsMissingMany struct {
	Deps []MissingDependency
}

func NewNeedsMissingMany(deps []MissingDependency) *NeedsMissingMany {
	return &NeedsMissingMany{Deps: deps}
}

// Captive dependency test types
type Clock interface {
	Tick() int64
}

type TransientClock struct {
	ID int64
}

func NewTransientClock() *TransientClock {
	return &TransientClock{ID: nextID()}
}

func (c *TransientClock) Tick() int64 { return c.ID }

// CaptiveCache holds on to the clock it was built with.
type CaptiveCache struct {
	Clock Clock
}

func NewCaptiveCache(clock Clock) *CaptiveCache {
	return &CaptiveCache{Clock: clock}
}

// ScopedHolder depends on the scoped fixture.
type ScopedHolder struct {
	Scoped *Scoped
}

func NewScopedHolder(scoped *Scoped) *ScopedHolder {
	return &ScopedHolder{Scoped: scoped}
}

// Circular dependency test types
type CircularService1 interface {
	GetService2() CircularService2
}

type CircularService2 interface {
	GetService1() CircularService1
}

type CircularImpl1 struct {
	svc2 CircularService2
}

func NewCircularImpl1(svc2 CircularService2) *CircularImpl1 {
	return &CircularImpl1{svc2: svc2}
}

func (i *CircularImpl1) GetService2() CircularService2 { return i.svc2 }

type CircularImpl2 struct {
	svc1 CircularService1
}

func NewCircularImpl2(svc1 CircularService1) *CircularImpl2 {
	return &CircularImpl2{svc1: svc1}
}

func (i *CircularImpl2) GetService1() CircularService1 { return i.svc1 }

// Deep dependency chain
type DeepService3 interface {
	GetValue() string
}

type DeepService2 interface {
	GetService3() DeepService3
}

type DeepService1 interface {
	GetService2() DeepService2
}

type DeepImpl3 struct {
	Value string
}

func NewDeepImpl3() *DeepImpl3 {
	return &DeepImpl3{Value: "deep"}
}

func (d *DeepImpl3) GetValue() string {
	return d.Value
}

type DeepImpl2 struct {
	svc3 DeepService3
}

func NewDeepImpl2(svc3 DeepService3) *DeepImpl2 {
	return &DeepImpl2{svc3: svc3}
}

func (d *DeepImpl2) GetService3() DeepService3 {
	return d.svc3
}

type DeepImpl1 struct {
	svc2 DeepService2
}

func NewDeepImpl1(svc2 DeepService2) *DeepImpl1 {
	return &DeepImpl1{svc2: svc2}
}

func (d *DeepImpl1) GetService2() DeepService2 {
	return d.svc2
}

// ComplexService depends on more than one contract.
type ComplexServiceInterface interface {
	GetDB() Database
	GetCache() Cache
}

type ComplexService struct {
	DB    Database
	Cache Cache
}

func NewComplexService(db Database, cache Cache) *ComplexService {
	return &ComplexService{DB: db, Cache: cache}
}

func (c *ComplexService) GetDB() Database {
	return c.DB
}

func (c *ComplexService) GetCache() Cache {
	return c.Cache
}

// Plugins exercise multi dependencies.
type Plugin interface {
	Name() string
}

type PluginA struct{}

func NewPluginA() *PluginA { return &PluginA{} }

func (PluginA) Name() string { return "a" }

type PluginB struct{}

func NewPluginB() *PluginB { return &PluginB{} }

func (PluginB) Name() string { return "b" }

type PluginHost struct {
	Plugins []Plugin
}

func NewPluginHost(plugins []Plugin) *PluginHost {
	return &PluginHost{Plugins: plugins}
}

type VariadicPluginHost struct {
	Plugins []Plugin
}

func NewVariadicPluginHost(plugins ...Plugin) *VariadicPluginHost {
	return &VariadicPluginHost{Plugins: plugins}
}

// Generic repositories
type Repository[T any] interface {
	Add(item T)
	All() []T
}

type MemoryRepository[T any] struct {
	ID    int64
	items []T
}

func NewMemoryRepository[T any]() *MemoryRepository[T] {
	return &MemoryRepository[T]{ID: nextID()}
}

func (r *MemoryRepository[T]) Add(item T) {
	r.items = append(r.items, item)
}

func (r *MemoryRepository[T]) All() []T {
	return r.items
}

type User struct {
	Name string
}

type Order struct {
	ID int
}

type UserService struct {
	Users Repository[User]
}

func NewUserService(users Repository[User]) *UserService {
	return &UserService{Users: users}
}

type AuditService struct {
	Users Repository[User]
}

func NewAuditService(users Repository[User]) *AuditService {
	return &AuditService{Users: users}
}

type OrderService struct {
	Orders Repository[Order]
}

func NewOrderService(orders Repository[Order]) *OrderService {
	return &OrderService{Orders: orders}
}

// Pair has two type parameters and cannot be registered as a generic.
type Pair[A, B any] struct {
	First  A
	Second B
}

func NewPair[A, B any]() *Pair[A, B] {
	return &Pair[A, B]{}
}

// Types of the two-registrations scenario: A has two registrations, B none.
type A interface {
	Value() string
}

type B interface {
	B()
}

type A1 struct{}

func NewA1() *A1 { return &A1{} }

func (*A1) Value() string { return "a1" }

type A2 struct{}

func NewA2() *A2 { return &A2{} }

func (*A2) Value() string { return "a2" }

type ScenarioRoot struct {
	A  A
	Bs []B
}

func NewScenarioRoot(a A, bs []B) *ScenarioRoot {
	return &ScenarioRoot{A: a, Bs: bs}
}

func (r *ScenarioRoot) String() string {
	return fmt.Sprintf("ScenarioRoot(%s, %d)", r.A.Value(), len(r.Bs))
}
