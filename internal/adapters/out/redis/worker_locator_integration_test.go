package redis

import (
	"context"
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type WorkerLocatorIntegrationTestSuite struct {
	suite.Suite
	container testcontainers.Container
	client    *goredis.Client
	locator   *WorkerLocator
}

func (suite *WorkerLocatorIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	suite.Require().NoError(err)
	suite.container = container

	endpoint, err := container.Endpoint(ctx, "")
	suite.Require().NoError(err)

	client, err := Connect(ctx, Config{Address: endpoint})
	suite.Require().NoError(err)
	suite.client = client
	suite.locator = NewWorkerLocator(client, "test:workers")
}

func (suite *WorkerLocatorIntegrationTestSuite) TearDownSuite() {
	if suite.client != nil {
		_ = suite.client.Close()
	}
	if suite.container != nil {
		_ = suite.container.Terminate(context.Background())
	}
}

func (suite *WorkerLocatorIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.client.Del(context.Background(), "test:workers").Err())
}

func (suite *WorkerLocatorIntegrationTestSuite) location(lat, lon float64) kernel.Location {
	location, err := kernel.NewLocation(lat, lon)
	suite.Require().NoError(err)
	return location
}

func (suite *WorkerLocatorIntegrationTestSuite) TestFindWithinRadius_NearestFirst() {
	ctx := context.Background()
	center := suite.location(55.7558, 37.6173)

	near := kernel.NewUUID()
	middle := kernel.NewUUID()
	outside := kernel.NewUUID()
	suite.Require().NoError(suite.locator.UpdateLocation(ctx, middle, suite.location(55.7700, 37.6173)))
	suite.Require().NoError(suite.locator.UpdateLocation(ctx, near, suite.location(55.7560, 37.6175)))
	suite.Require().NoError(suite.locator.UpdateLocation(ctx, outside, suite.location(55.9000, 37.6173)))

	ids, err := suite.locator.FindWithinRadius(ctx, center, 5000)
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{near, middle}, ids)
}

func (suite *WorkerLocatorIntegrationTestSuite) TestUpdateMovesAndRemoveTakesOffline() {
	ctx := context.Background()
	center := suite.location(55.7558, 37.6173)
	workerID := kernel.NewUUID()

	suite.Require().NoError(suite.locator.UpdateLocation(ctx, workerID, suite.location(55.9000, 37.6173)))
	ids, err := suite.locator.FindWithinRadius(ctx, center, 5000)
	suite.Require().NoError(err)
	suite.Empty(ids)

	suite.Require().NoError(suite.locator.UpdateLocation(ctx, workerID, suite.location(55.7560, 37.6173)))
	ids, err = suite.locator.FindWithinRadius(ctx, center, 5000)
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{workerID}, ids)

	suite.Require().NoError(suite.locator.Remove(ctx, workerID))
	ids, err = suite.locator.FindWithinRadius(ctx, center, 5000)
	suite.Require().NoError(err)
	suite.Empty(ids)
}

func TestWorkerLocatorIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(WorkerLocatorIntegrationTestSuite))
}
