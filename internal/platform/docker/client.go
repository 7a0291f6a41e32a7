package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"github.com/dontdude/regexbench/internal/platform/compiler"
)

// DefaultImage carries gcc and g++.
const DefaultImage = "gcc:14"

// api is the part of the Docker SDK client the compiler uses.
type api interface {
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	Close() error
}

// Compiler runs gcc inside an ephemeral container with the scratch
// directory bind-mounted, for hosts without a native toolchain.
type Compiler struct {
	cli   api
	image string

	pullOnce sync.Once
	pullErr  error
}

// Check if Compiler implements compiler.ContainerToolchain
var _ compiler.ContainerToolchain = (*Compiler)(nil)

// NewCompiler connects to the Docker daemon from the environment and pings
// it, so that an unreachable daemon is reported up front.
func NewCompiler(ctx context.Context, imageName string) (*Compiler, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	if _, err := cli.Ping(ctx); err != nil {
		cli.Close()
		return nil, fmt.Errorf("failed to connect to docker daemon: %w", err)
	}
	slog.Debug("Docker client initialized", "image", imageName)
	return newCompiler(cli, imageName), nil
}

func newCompiler(cli api, imageName string) *Compiler {
	if imageName == "" {
		imageName = DefaultImage
	}
	return &Compiler{cli: cli, image: imageName}
}

// RunCompiler executes req.Command in a fresh container and returns its
// combined output. A non-zero exit status is not an error; the caller
// decides success by the artifact.
func (c *Compiler) RunCompiler(ctx context.Context, req compiler.ContainerRequest) (string, error) {
	// 1. Pull the image once per process.
	c.pullOnce.Do(func() { c.pullErr = c.pull(ctx) })
	if c.pullErr != nil {
		return "", c.pullErr
	}

	// 2. Create the container: no network, 512MB, host user so the
	// library is owned by us.
	resp, err := c.cli.ContainerCreate(ctx, &container.Config{
		Image:      c.image,
		Cmd:        req.Command,
		WorkingDir: compiler.ContainerWorkDir,
		User:       hostUser(),
	}, &container.HostConfig{
		Binds:       []string{req.HostDir + ":" + compiler.ContainerWorkDir},
		NetworkMode: "none",
		Resources: container.Resources{
			Memory: 512 * 1024 * 1024,
		},
	}, nil, nil, "")
	if err != nil {
		return "", fmt.Errorf("failed to create container: %w", err)
	}
	defer func() {
		if err := c.cli.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true}); err != nil {
			slog.Warn("Failed to remove container", "containerID", resp.ID, "error", err)
		}
	}()

	// 3. Start and wait for the compiler to exit.
	if err := c.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("failed to start container: %w", err)
	}
	statusCh, errCh := c.cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		if err != nil {
			return "", fmt.Errorf("failed waiting for container: %w", err)
		}
	case status := <-statusCh:
		slog.Debug("Compiler container exited", "containerID", resp.ID, "status", status.StatusCode)
	}

	// 4. Collect the demultiplexed output.
	logs, err := c.cli.ContainerLogs(ctx, resp.ID, container.LogsOptions{ShowStdout: true, ShowStderr: true})
	if err != nil {
		return "", fmt.Errorf("failed to read container logs: %w", err)
	}
	defer logs.Close()

	var out bytes.Buffer
	if _, err := stdcopy.StdCopy(&out, &out, logs); err != nil {
		return "", fmt.Errorf("failed to demultiplex container logs: %w", err)
	}
	return out.String(), nil
}

// Close releases the Docker client.
func (c *Compiler) Close() error {
	return c.cli.Close()
}

func (c *Compiler) pull(ctx context.Context) error {
	slog.Info("Pulling compiler image", "image", c.image)
	reader, err := c.cli.ImagePull(ctx, c.image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", c.image, err)
	}
	defer reader.Close()
	// Drain the response body to ensure the pull completes properly.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", c.image, err)
	}
	return nil
}

func hostUser() string {
	if runtime.GOOS == "windows" {
		return ""
	}
	return fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
}
