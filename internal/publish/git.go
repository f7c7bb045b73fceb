package publish

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Default author identity for automated publish commits.
const (
	DefaultGitUserName  = "github-actions[bot]"
	DefaultGitUserEmail = "github-actions[bot]@users.noreply.github.com"
)

// GitSink publishes by shelling out to git in a working directory that is
// already a checkout of the site repository.
type GitSink struct {
	Dir       string
	UserName  string
	UserEmail string
}

// NewGitSink creates a GitSink for dir, defaulting the author identity.
func NewGitSink(dir string) *GitSink {
	return &GitSink{
		Dir:       dir,
		UserName:  DefaultGitUserName,
		UserEmail: DefaultGitUserEmail,
	}
}

func (g *GitSink) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Setup configures the commit author for the working copy.
func (g *GitSink) Setup(ctx context.Context) error {
	if err := g.run(ctx, "config", "user.name", g.UserName); err != nil {
		return err
	}
	return g.run(ctx, "config", "user.email", g.UserEmail)
}

// Stage adds the given paths to the index.
func (g *GitSink) Stage(ctx context.Context, paths ...string) error {
	return g.run(ctx, append([]string{"add"}, paths...)...)
}

// HasChanges reports whether the staged diff is non-empty.
func (g *GitSink) HasChanges(ctx context.Context) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "diff", "--cached", "--quiet")
	cmd.Dir = g.Dir
	err := cmd.Run()
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, fmt.Errorf("git diff --cached: %w", err)
}

// Commit records the staged changes.
func (g *GitSink) Commit(ctx context.Context, message string) error {
	log.Info("committing changes", "message", message)
	return g.run(ctx, "commit", "-m", message)
}

// Push publishes the commit to the remote.
func (g *GitSink) Push(ctx context.Context) error {
	log.Info("pushing to remote")
	return g.run(ctx, "push")
}
