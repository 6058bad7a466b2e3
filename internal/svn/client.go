// Package svn adapts the Subversion command line client into the typed
// VersionControlBackend contract. It shells out with --xml and parses the
// structured output; it holds no state of its own beyond configuration.
package svn

import (
	"context"
	stdErrors "errors"
	"fmt"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/pmanser/svnd/internal/contracts"
	"github.com/pmanser/svnd/internal/domain"
	"github.com/pmanser/svnd/internal/errors"
)

var _ contracts.VersionControlBackend = (*Client)(nil)

// committedRevision matches the commit confirmation printed by a copy operation.
var committedRevision = regexp.MustCompile(`Committed revision (\d+)\.`)

// Client invokes the svn binary and parses its XML output.
// NewClient should be used to create instances of Client.
type Client struct {
	// logger is used for logging backend invocations.
	logger hclog.Logger

	// binary is the svn client executable.
	binary string

	// createRepoBinary is the executable that provisions a new repository.
	createRepoBinary string

	// timeout bounds every single backend invocation.
	timeout time.Duration

	// runner executes backend processes.
	runner Runner
}

// NewClient creates a backend adapter for the svn command line client.
func NewClient(logger hclog.Logger, opts ...ClientOption) (*Client, error) {
	options, err := NewClientOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Client{
		logger:           logger.Named("svn"),
		binary:           options.binary,
		createRepoBinary: options.createRepoBinary,
		timeout:          options.timeout,
		runner:           options.runner,
	}, nil
}

// Info returns the repository record for the repository at url.
func (c *Client) Info(ctx context.Context, url string) (domain.RepositoryRecord, error) {
	res, err := c.invoke(ctx, c.binary, "info", "--xml", url)
	if err != nil {
		return domain.RepositoryRecord{}, err
	}
	if res.ExitCode != 0 {
		return domain.RepositoryRecord{}, c.readFailure("info", url, res)
	}
	return parseInfo(res.Stdout)
}

// List returns the directory entries at path below url.
func (c *Client) List(ctx context.Context, url, subPath string, revision int64, recursive bool) ([]domain.Entry, error) {
	target := joinURL(url, subPath)

	args := []string{"list", "--xml", target}
	if revision > 0 {
		args = append(args, "-r", strconv.FormatInt(revision, 10))
	}
	if recursive {
		args = append(args, "-R")
	}

	res, err := c.invoke(ctx, c.binary, args...)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, c.readFailure("list", target, res)
	}

	webBase := "/" + path.Base(strings.TrimRight(url, "/"))
	if p := strings.Trim(subPath, "/"); p != "" {
		webBase += "/" + p
	}
	return parseList(res.Stdout, webBase)
}

// Log returns the commit history for url in the backend's own order.
func (c *Client) Log(ctx context.Context, url string) ([]domain.LogEntry, error) {
	res, err := c.invoke(ctx, c.binary, "log", "--xml", "--verbose", url)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, c.readFailure("log", url, res)
	}
	return parseLog(res.Stdout)
}

// Diff returns the raw diff text between two revisions of url.
func (c *Client) Diff(ctx context.Context, url string, from, to int64) (string, error) {
	res, err := c.invoke(ctx, c.binary, "diff", "-r", fmt.Sprintf("%d:%d", from, to), url)
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", c.readFailure("diff", url, res)
	}
	return string(res.Stdout), nil
}

// DiffSummarize returns the per-path change summary between two revisions of url.
func (c *Client) DiffSummarize(ctx context.Context, url string, from, to int64) ([]domain.ChangeSummary, error) {
	res, err := c.invoke(ctx, c.binary, "diff", "--xml", "--summarize", "-r", fmt.Sprintf("%d:%d", from, to), url)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, c.readFailure("diff --summarize", url, res)
	}
	return parseDiffSummary(res.Stdout)
}

// Cat returns the raw bytes of the file at url.
func (c *Client) Cat(ctx context.Context, url string) ([]byte, error) {
	res, err := c.invoke(ctx, c.binary, "cat", url)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, c.readFailure("cat", url, res)
	}
	return res.Stdout, nil
}

// Copy performs the backend copy operation and returns the newly created revision.
func (c *Client) Copy(ctx context.Context, srcURL, dstURL, message, actingUser string) (int64, error) {
	args := []string{"copy", srcURL, dstURL, "-m", message}
	if actingUser != "" {
		args = append(args, "--username", actingUser)
	}

	res, err := c.invoke(ctx, c.binary, args...)
	if err != nil {
		return 0, err
	}
	if res.ExitCode != 0 {
		return 0, fmt.Errorf("%w: copy to '%s': %s", errors.ErrBackendOperationFailed, dstURL, diagnostic(res))
	}

	m := committedRevision.FindSubmatch(res.Stdout)
	if m == nil {
		return 0, fmt.Errorf("%w: copy output contained no committed revision", errors.ErrBackendParse)
	}
	rev, err := strconv.ParseInt(string(m[1]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: bad committed revision '%s'", errors.ErrBackendParse, m[1])
	}
	return rev, nil
}

// SetRevisionAuthor rewrites the author metadata of an existing revision.
// The repository must allow revision property changes (pre-revprop-change hook).
func (c *Client) SetRevisionAuthor(ctx context.Context, repoPath string, revision int64, author string) error {
	res, err := c.invoke(ctx,
		c.binary, "propset", "--revprop", "-r", strconv.FormatInt(revision, 10), "svn:author", author, repoPath,
	)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf(
			"%w: setting author of r%d on '%s': %s",
			errors.ErrBackendOperationFailed, revision, repoPath, diagnostic(res),
		)
	}
	return nil
}

// ListTags returns existing tag names below url's conventional tags directory.
func (c *Client) ListTags(ctx context.Context, url string) ([]string, error) {
	names, err := c.listChildren(ctx, joinURL(url, "tags"))
	if err != nil {
		if stdErrors.Is(err, errMissingTarget) {
			return nil, fmt.Errorf("%w: %s", errors.ErrNoTagsDirectory, url)
		}
		return nil, err
	}
	return names, nil
}

// ListBranches returns existing branch names below url's conventional branches directory.
func (c *Client) ListBranches(ctx context.Context, url string) ([]string, error) {
	names, err := c.listChildren(ctx, joinURL(url, "branches"))
	if err != nil {
		if stdErrors.Is(err, errMissingTarget) {
			return nil, fmt.Errorf("%w: %s", errors.ErrNoBranchesDirectory, url)
		}
		return nil, err
	}
	return names, nil
}

// CreateRepository creates a brand new repository with the given name.
func (c *Client) CreateRepository(ctx context.Context, name, actingUser string) error {
	res, err := c.invoke(ctx, c.createRepoBinary, name)
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("%w: creating repository '%s': %s", errors.ErrBackendOperationFailed, name, diagnostic(res))
	}

	c.logger.Info("Created repository", "name", name, "actor", actingUser)
	return nil
}

// errMissingTarget marks a listing whose target path does not exist in the repository.
var errMissingTarget = stdErrors.New("target does not exist")

// listChildren returns the child names directly below url.
func (c *Client) listChildren(ctx context.Context, url string) ([]string, error) {
	res, err := c.invoke(ctx, c.binary, "list", "--xml", url)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		if isMissingTarget(res.Stderr) {
			return nil, errMissingTarget
		}
		return nil, c.readFailure("list", url, res)
	}

	entries, err := parseList(res.Stdout, "/")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// isMissingTarget reports whether stderr indicates that the listed URL does
// not exist in the repository, as opposed to the backend being broken.
func isMissingTarget(stderr []byte) bool {
	s := string(stderr)
	return strings.Contains(s, "W160013") || // URL non-existent in HEAD (svn >= 1.7)
		strings.Contains(s, "E200009") ||
		strings.Contains(s, "non-existent")
}

// invoke runs one backend process with the client's bounded timeout and maps
// invocation-level failures to the error taxonomy. A non-zero exit is not an
// error at this level; operation methods decide what it means.
func (c *Client) invoke(ctx context.Context, name string, args ...string) (Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("Invoking backend", "binary", name, "args", args)

	res, err := c.runner.Run(ctx, name, args...)
	if ctxErr := ctx.Err(); stdErrors.Is(ctxErr, context.DeadlineExceeded) {
		return res, fmt.Errorf("%w: '%s %s' exceeded %s", errors.ErrBackendTimeout, name, args[0], c.timeout)
	}
	if err != nil {
		return res, fmt.Errorf("%w: '%s': %v", errors.ErrBackendUnavailable, name, err)
	}

	return res, nil
}

// readFailure maps a non-zero exit from a read-style operation. The process
// ran, so unavailability is reserved for targets whose repository server
// could not be reached; a missing target is the caller's mistake, everything
// else is the backend refusing the operation.
func (c *Client) readFailure(op, target string, res Result) error {
	c.logger.Error("Backend read failed", "op", op, "target", target, "exit", res.ExitCode)
	switch {
	case isMissingTarget(res.Stderr):
		return fmt.Errorf("%w: %s '%s': %s", errors.ErrPathNotFound, op, target, diagnostic(res))
	case isConnectFailure(res.Stderr):
		return fmt.Errorf("%w: %s '%s': %s", errors.ErrBackendUnavailable, op, target, diagnostic(res))
	default:
		return fmt.Errorf("%w: %s '%s': %s", errors.ErrBackendOperationFailed, op, target, diagnostic(res))
	}
}

// isConnectFailure reports whether stderr indicates the repository server
// behind the URL could not be reached.
func isConnectFailure(stderr []byte) bool {
	s := string(stderr)
	return strings.Contains(s, "E170013") || // Unable to connect to a repository at URL
		strings.Contains(s, "Unable to connect")
}

// diagnostic extracts the backend's diagnostic text from a failed invocation.
func diagnostic(res Result) string {
	msg := strings.TrimSpace(string(res.Stderr))
	if msg == "" {
		msg = fmt.Sprintf("exit code %d", res.ExitCode)
	}
	return msg
}

// joinURL appends a sub path to a repository URL without doubling separators.
func joinURL(url, subPath string) string {
	url = strings.TrimRight(url, "/")
	subPath = strings.Trim(subPath, "/")
	if subPath == "" {
		return url
	}
	return url + "/" + subPath
}
