package digo_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/centraunit/digo"
	"github.com/centraunit/digo/mock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
)

type HTTPTestSuite struct {
	suite.Suite
	root *digo.LifetimeScope
}

func (s *HTTPTestSuite) SetupTest() {
	b := digo.NewCatalogBuilder()
	s.Require().NoError(b.RegisterType(mock.NewScoped, digo.ScopeScoped))
	s.Require().NoError(b.RegisterType(mock.NewSingleton, digo.ScopeSingleton))
	s.Require().NoError(b.RegisterType(mock.NewScopedConsumer, digo.ScopeScoped))
	s.Require().NoError(b.RegisterType(mock.NewMockDB, digo.ScopeScoped, digo.As[mock.Database]()))
	catalog, err := b.Build()
	s.Require().NoError(err)
	s.root = digo.NewLifetimeScope(catalog)
}

// Middleware creating one child scope per request
func scopeMiddleware(root *digo.LifetimeScope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := root.CreateChildScope()
			defer scope.Shutdown(context.Background())

			next.ServeHTTP(w, r.WithContext(digo.NewContext(r.Context(), scope)))
		})
	}
}

func (s *HTTPTestSuite) TestRequestScopeLifecycle() {
	dbs := make(chan *mock.MockDB, 2)

	r := chi.NewRouter()
	r.Use(scopeMiddleware(s.root))
	r.Get("/consumer", func(w http.ResponseWriter, r *http.Request) {
		first, err := digo.ResolveContext[*mock.ScopedConsumer](r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		second, err := digo.ResolveContext[*mock.ScopedConsumer](r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if first != second {
			http.Error(w, "scoped instance changed within a request", http.StatusInternalServerError)
			return
		}

		db, err := digo.ResolveContext[mock.Database](r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		dbs <- db.(*mock.MockDB)

		fmt.Fprintf(w, "%d", first.Scoped.ID)
	})

	get := func() string {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/consumer", nil))
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
		return rec.Body.String()
	}

	s.NotEqual(get(), get(), "each request gets its own scoped instance")

	close(dbs)
	var seen []*mock.MockDB
	for db := range dbs {
		s.False(db.IsConnected(), "request scope shuts its instances down")
		s.Equal(1, db.ShutdownCalls)
		seen = append(seen, db)
	}
	s.Require().Len(seen, 2)
	s.NotSame(seen[0], seen[1])
}

func (s *HTTPTestSuite) TestSingletonSharedAcrossRequests() {
	singletons := make(chan *mock.Singleton, 2)

	r := chi.NewRouter()
	r.Use(scopeMiddleware(s.root))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		consumer, err := digo.ResolveContext[*mock.ScopedConsumer](r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		singletons <- consumer.Singleton
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		s.Equal(http.StatusOK, rec.Code)
	}

	first, second := <-singletons, <-singletons
	s.Same(first, second)
	s.Same(first, digo.MustResolve[*mock.Singleton](s.root))
}

func (s *HTTPTestSuite) TestMissingScope() {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_, err := digo.ResolveContext[*mock.Scoped](r.Context())
		var missing *digo.MissingContextValueError
		if errors.As(err, &missing) {
			http.Error(w, missing.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	s.Equal(http.StatusServiceUnavailable, rec.Code)
	s.Contains(rec.Body.String(), "lifetime scope")
}

func TestHTTPSuite(t *testing.T) {
	suite.Run(t, new(HTTPTestSuite))
}

func TestContext(t *testing.T) {
	b := digo.NewCatalogBuilder()
	if err := b.RegisterType(mock.NewScoped, digo.ScopeScoped); err != nil {
		t.Fatal(err)
	}
	catalog, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	scope := digo.NewLifetimeScope(catalog)

	ctx := digo.NewContext(context.Background(), scope)
	got, ok := digo.FromContext(ctx)
	if !ok || got != scope {
		t.Fatalf("FromContext() = %v, %v", got, ok)
	}

	instance, err := digo.ResolveTypeContext(ctx, digo.As[*mock.Scoped]())
	if err != nil {
		t.Fatal(err)
	}
	if instance != digo.MustResolve[*mock.Scoped](scope) {
		t.Error("context resolution bypassed the scope cache")
	}

	if _, ok := digo.FromContext(context.Background()); ok {
		t.Error("FromContext() found a scope in an empty context")
	}
	if _, err := digo.ResolveTypeContext(context.Background(), digo.As[*mock.Scoped]()); err == nil {
		t.Error("expected an error without a scope")
	}
}
