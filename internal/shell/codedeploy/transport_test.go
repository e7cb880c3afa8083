package codedeploy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/promoter/internal/core/domain"
)

// fakeEndpoint answers CodeDeploy JSON 1.1 calls by X-Amz-Target.
type fakeEndpoint struct {
	mu      sync.Mutex
	targets []string
	bodies  []map[string]any
	replies map[string]func(w http.ResponseWriter)
}

func (e *fakeEndpoint) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.Header.Get("X-Amz-Target")
	op := target[strings.LastIndex(target, ".")+1:]

	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	e.mu.Lock()
	e.targets = append(e.targets, op)
	e.bodies = append(e.bodies, body)
	reply, ok := e.replies[op]
	e.mu.Unlock()

	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"__type":"InvalidOperationException","message":"unexpected call"}`))
		return
	}
	reply(w)
}

func jsonReply(status int, body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func newEndpointClient(t *testing.T, e *fakeEndpoint) *Client {
	t.Helper()

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(), Config{
		Region:          "eu-central-1",
		AccessKeyID:     "AKIDEXAMPLE",
		SecretAccessKey: "secret",
		Endpoint:        srv.URL,
		PollInterval:    5 * time.Millisecond,
		MaxRetries:      1,
	}, testLogger())
	require.NoError(t, err)
	return c
}

func TestNewClient_RequiresRegion(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	_, err := NewClient(context.Background(), Config{AccessKeyID: "a", SecretAccessKey: "b"}, nil)
	assert.Error(t, err)
}

func TestTransport_CreateDeploymentWireFormat(t *testing.T) {
	e := &fakeEndpoint{replies: map[string]func(http.ResponseWriter){
		"CreateDeployment": jsonReply(http.StatusOK, `{"deploymentId":"d-WIRE01"}`),
	}}
	c := newEndpointClient(t, e)
	assert.Equal(t, "eu-central-1", c.Region())

	id, err := c.CreateDeployment(context.Background(), domain.DeploymentRequest{
		Identity:    testGroup,
		Revision:    domain.GitHubRevision("abc123", "octocat/Hello-World"),
		Description: "Created by promoter (run_number=3)",
	})
	require.NoError(t, err)
	assert.Equal(t, "d-WIRE01", id)

	require.Equal(t, []string{"CreateDeployment"}, e.targets)
	body := e.bodies[0]
	assert.Equal(t, "Hello-World", body["applicationName"])
	assert.Equal(t, "feature--x", body["deploymentGroupName"])
	assert.Equal(t, "Created by promoter (run_number=3)", body["description"])

	revision, ok := body["revision"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "GitHub", revision["revisionType"])
}

func TestTransport_GroupNotFoundIsClassified(t *testing.T) {
	e := &fakeEndpoint{replies: map[string]func(http.ResponseWriter){
		"UpdateDeploymentGroup": jsonReply(http.StatusBadRequest,
			`{"__type":"DeploymentGroupDoesNotExistException","message":"No Deployment Group found"}`),
		"CreateDeploymentGroup": jsonReply(http.StatusOK, `{"deploymentGroupId":"dg-1"}`),
	}}
	c := newEndpointClient(t, e)

	err := c.UpdateDeploymentGroup(context.Background(), testGroup, map[string]any{"serviceRoleArn": "arn:role"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
	assert.Equal(t, "No Deployment Group found", domain.ServiceMessage(err))

	require.NoError(t, c.CreateDeploymentGroup(context.Background(), testGroup, map[string]any{"serviceRoleArn": "arn:role"}))
	assert.Equal(t, []string{"UpdateDeploymentGroup", "CreateDeploymentGroup"}, e.targets)
	assert.Equal(t, "arn:role", e.bodies[1]["serviceRoleArn"])
}

func TestTransport_WaitReadsStatus(t *testing.T) {
	e := &fakeEndpoint{replies: map[string]func(http.ResponseWriter){
		"GetDeployment": jsonReply(http.StatusOK,
			`{"deploymentInfo":{"deploymentId":"d-WIRE01","status":"Succeeded","description":"Created by promoter (run_number=3)"}}`),
	}}
	c := newEndpointClient(t, e)

	require.NoError(t, c.WaitUntilSuccessful(context.Background(), "d-WIRE01", time.Second))

	info, err := c.GetDeployment(context.Background(), "d-WIRE01")
	require.NoError(t, err)
	assert.Equal(t, domain.DeploymentSucceeded, info.Status)
	assert.Equal(t, "Created by promoter (run_number=3)", info.Description)
}
