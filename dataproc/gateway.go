// Package dataproc resolves cluster endpoints through the Dataproc control
// plane.
package dataproc

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	dataprocapi "google.golang.org/api/dataproc/v1"
	"google.golang.org/api/option"
)

// livyGatewaySuffix is the path of the proxied Livy v1 API behind the
// Component Gateway.
const livyGatewaySuffix = "gateway/default/livy/v1"

// clientOptions lets tests point the API client at a fixture server.
var clientOptions []option.ClientOption

// ComponentGatewayURL fetches the cluster description from the regional
// control plane and derives the proxied Livy base URL from its published
// HTTP ports. When a cluster publishes several ports an arbitrary one is
// used; the choice is not guaranteed stable between calls.
func ComponentGatewayURL(ctx context.Context, projectID, region, clusterName string, ts oauth2.TokenSource) (string, error) {
	opts := append([]option.ClientOption{
		option.WithEndpoint(fmt.Sprintf("https://%s-dataproc.googleapis.com/", region)),
		option.WithTokenSource(ts),
	}, clientOptions...)

	service, err := dataprocapi.NewService(ctx, opts...)
	if err != nil {
		return "", err
	}

	log.Debug().Str("project", projectID).Str("region", region).Str("cluster", clusterName).
		Msg("fetching cluster description")
	cluster, err := service.Projects.Regions.Clusters.Get(projectID, region, clusterName).Context(ctx).Do()
	if err != nil {
		return "", err
	}

	if cluster.Config == nil || cluster.Config.EndpointConfig == nil || len(cluster.Config.EndpointConfig.HttpPorts) == 0 {
		return "", fmt.Errorf("cluster %s publishes no component gateway HTTP ports", clusterName)
	}

	var gateway string
	for _, portURL := range cluster.Config.EndpointConfig.HttpPorts {
		gateway = portURL
		break
	}
	parsed, err := url.Parse(gateway)
	if err != nil {
		return "", fmt.Errorf("cluster %s publishes a malformed HTTP port url %q: %w", clusterName, gateway, err)
	}
	return fmt.Sprintf("%s://%s/%s", parsed.Scheme, parsed.Host, livyGatewaySuffix), nil
}
