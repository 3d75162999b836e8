package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/HatiCode/storecast/pkg/client"
	"github.com/HatiCode/storecast/pkg/features"
	"github.com/HatiCode/storecast/pkg/pipeline"
	"github.com/HatiCode/storecast/pkg/rpc"
)

// TestStorecastE2E builds the server image and drives the HTTP and gRPC
// surfaces of a running container.
func TestStorecastE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	t.Log("Building and starting storecast container...")
	req := testcontainers.ContainerRequest{
		FromDockerfile: testcontainers.FromDockerfile{
			Context:    "../../",
			Dockerfile: "Dockerfile",
		},
		ExposedPorts: []string{"8080/tcp", "50051/tcp"},
		Cmd: []string{
			"-listen=:8080",
			"-grpc-listen=:50051",
			"-log-level=debug",
		},
		WaitingFor: wait.ForHTTP("/healthz").WithPort("8080/tcp").WithStartupTimeout(120 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start storecast container: %v", err)
	}
	defer container.Terminate(ctx)

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	httpPort, err := container.MappedPort(ctx, "8080")
	if err != nil {
		t.Fatalf("Failed to get HTTP port: %v", err)
	}
	grpcPort, err := container.MappedPort(ctx, "50051")
	if err != nil {
		t.Fatalf("Failed to get gRPC port: %v", err)
	}

	baseURL := fmt.Sprintf("http://%s:%s", host, httpPort.Port())
	grpcAddr := fmt.Sprintf("%s:%s", host, grpcPort.Port())
	t.Logf("storecast running at %s (gRPC %s)", baseURL, grpcAddr)

	summer := features.RawInputs{
		StoreID:      5,
		Month:        6,
		HolidayFlag:  0,
		Temperature:  75,
		FuelPrice:    3,
		CPI:          210,
		Unemployment: 8,
		RollingMean4: 1500000,
		Season:       features.Summer,
		DayOfWeek:    3,
	}
	labels := pipeline.DefaultLabels()

	httpClient := client.NewPredictorClient(baseURL)

	t.Run("HTTP predict", func(t *testing.T) {
		resp, err := httpClient.Predict(ctx, summer)
		if err != nil {
			t.Fatalf("Predict failed: %v", err)
		}
		if resp.SalesPred <= 0 {
			t.Errorf("salesPred = %v, want positive", resp.SalesPred)
		}
		if !labels.Has(resp.CorrectedDemand) {
			t.Errorf("correctedDemand = %d, not in label table", resp.CorrectedDemand)
		}
		t.Logf("✓ %s, demand %s", resp.SalesFormatted, resp.DemandLabel)
	})

	t.Run("HTTP predict invalid input", func(t *testing.T) {
		bad := summer
		bad.Month = 13
		_, err := httpClient.Predict(ctx, bad)
		var apiErr *client.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
			t.Errorf("error = %v, want 400 APIError", err)
		}
	})

	t.Run("HTTP models", func(t *testing.T) {
		resp, err := httpClient.Models(ctx)
		if err != nil {
			t.Fatalf("Models failed: %v", err)
		}
		if len(resp.Models) != 3 {
			t.Errorf("got %d models, want 3", len(resp.Models))
		}
	})

	t.Run("Web form", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/?view=predict")
		if err != nil {
			t.Fatalf("GET form failed: %v", err)
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, body: %s", resp.StatusCode, body)
		}
	})

	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("Failed to connect to gRPC: %v", err)
	}
	defer conn.Close()

	t.Run("gRPC health", func(t *testing.T) {
		resp, err := grpc_health_v1.NewHealthClient(conn).Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: rpc.ServiceName})
		if err != nil {
			t.Fatalf("health check failed: %v", err)
		}
		if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
			t.Errorf("status = %v, want SERVING", resp.GetStatus())
		}
	})

	t.Run("gRPC predict", func(t *testing.T) {
		httpResp, err := httpClient.Predict(ctx, summer)
		if err != nil {
			t.Fatalf("HTTP predict failed: %v", err)
		}
		resp, err := rpc.NewClient(conn).Predict(ctx, summer)
		if err != nil {
			t.Fatalf("gRPC predict failed: %v", err)
		}
		if resp.SalesPred != httpResp.SalesPred || resp.DemandLabel != httpResp.DemandLabel {
			t.Errorf("gRPC result %+v differs from HTTP result %+v", resp, httpResp)
		}
	})

	t.Run("gRPC invalid input", func(t *testing.T) {
		bad := summer
		bad.Season = "Autumn"
		_, err := rpc.NewClient(conn).Predict(ctx, bad)
		if status.Code(err) != codes.InvalidArgument {
			t.Errorf("code = %v, want InvalidArgument", status.Code(err))
		}
	})

	t.Log("✓ All integration tests passed!")
}
