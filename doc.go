// Package digo is a dependency injection container built around lifetime
// scopes.
//
// Registrations are collected in a Catalog. A registration binds a
// constructor (or a ready-made instance) to the contracts it can be
// resolved by and to a Scope:
//
//	b := digo.NewCatalogBuilder()
//	b.RegisterType(NewPostgres, digo.ScopeSingleton, digo.As[Database]())
//	b.RegisterType(NewUserHandler, digo.ScopeScoped)
//	catalog, err := b.Build()
//
// The parameters of a constructor declare its dependencies. A parameter of
// type C needs one registration for C; a []C or variadic ...C parameter
// receives every registration for C and may be empty.
//
// A LifetimeScope resolves types from the catalog. Singletons and
// registered instances are cached by the root scope, scoped instances by
// the scope that built them and transient instances are never cached:
//
//	root := digo.NewLifetimeScope(catalog, digo.WithLogger(logger))
//	request := root.CreateChildScope()
//	handler, err := digo.Resolve[*UserHandler](request)
//
// Open generic injectables are registered with one closing per type
// argument the application needs:
//
//	b.RegisterGeneric(digo.ScopeSingleton,
//		[]reflect.Type{digo.As[Repository[User]]()},
//		digo.Close[User](NewMemoryRepository[User]),
//		digo.Close[Order](NewMemoryRepository[Order]))
package digo
