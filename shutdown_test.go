package digo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/centraunit/digo"
	"github.com/centraunit/digo/mock"
	"github.com/stretchr/testify/suite"
)

type connectionA struct{ *mock.Connection }
type connectionB struct{ *mock.Connection }

type ResourceTestSuite struct {
	suite.Suite
	closed []string
}

func (s *ResourceTestSuite) SetupTest() {
	s.closed = nil
}

func (s *ResourceTestSuite) scope(closeErr error) *digo.LifetimeScope {
	b := digo.NewCatalogBuilder()
	s.Require().NoError(b.RegisterType(func() *connectionA {
		return &connectionA{&mock.Connection{Name: "a", Log: &s.closed}}
	}, digo.ScopeScoped))
	s.Require().NoError(b.RegisterType(func(a *connectionA) *connectionB {
		return &connectionB{&mock.Connection{Name: "b", Log: &s.closed, CloseErr: closeErr}}
	}, digo.ScopeScoped))
	s.Require().NoError(b.RegisterType(mock.NewMockDB, digo.ScopeSingleton, digo.As[mock.Database]()))
	s.Require().NoError(b.RegisterType(mock.NewTransient1, digo.ScopeTransient))
	catalog, err := b.Build()
	s.Require().NoError(err)
	return digo.NewLifetimeScope(catalog)
}

func (s *ResourceTestSuite) TestShutdownOrder() {
	scope := s.scope(nil)
	digo.MustResolve[*connectionB](scope)

	s.NoError(scope.Shutdown(context.Background()))
	s.Equal([]string{"b", "a"}, s.closed, "dependents are shut down before their dependencies")
}

func (s *ResourceTestSuite) TestShutdownErrors() {
	closeErr := errors.New("close failed")
	scope := s.scope(closeErr)
	digo.MustResolve[*connectionB](scope)

	err := scope.Shutdown(context.Background())
	s.ErrorIs(err, closeErr)
	var shutdownErr *digo.ShutdownError
	s.Require().True(errors.As(err, &shutdownErr))
	s.Equal("*digo_test.connectionB", shutdownErr.Type)
	s.Equal([]string{"b", "a"}, s.closed, "one failure does not stop the rest")
}

func (s *ResourceTestSuite) TestUseAfterShutdown() {
	scope := s.scope(nil)
	s.Require().NoError(scope.Shutdown(context.Background()))

	_, err := digo.Resolve[*connectionA](scope)
	var scopeErr *digo.ScopeShutdownError
	s.Require().True(errors.As(err, &scopeErr))
	s.Equal(scope.ID(), scopeErr.ScopeID)

	s.True(errors.As(scope.Shutdown(context.Background()), &scopeErr))
}

func (s *ResourceTestSuite) TestChildOnlyShutsDownItsOwnInstances() {
	root := s.scope(nil)
	child := root.CreateChildScope()

	db := digo.MustResolve[mock.Database](child).(*mock.MockDB)
	digo.MustResolve[*connectionA](child)
	digo.MustResolve[*mock.Transient1](child)

	s.Require().NoError(child.Shutdown(context.Background()))
	s.Equal([]string{"a"}, s.closed)
	s.True(db.IsConnected(), "singletons belong to the root scope")

	s.Require().NoError(root.Shutdown(context.Background()))
	s.False(db.IsConnected())
	s.Equal(1, db.ShutdownCalls)
}

func (s *ResourceTestSuite) TestRegisteredInstancesAreNotShutDown() {
	db := mock.NewMockDB()
	b := digo.NewCatalogBuilder()
	s.Require().NoError(b.RegisterInstance(db, digo.As[mock.Database]()))
	catalog, err := b.Build()
	s.Require().NoError(err)
	scope := digo.NewLifetimeScope(catalog)

	digo.MustResolve[mock.Database](scope)
	s.Require().NoError(scope.Shutdown(context.Background()))
	s.Zero(db.ShutdownCalls)
}

func (s *ResourceTestSuite) TestCancelledShutdown() {
	scope := s.scope(nil)
	digo.MustResolve[*connectionB](scope)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := scope.Shutdown(ctx)
	s.ErrorIs(err, context.Canceled)
	s.Empty(s.closed)
}

func TestResourceSuite(t *testing.T) {
	suite.Run(t, new(ResourceTestSuite))
}
