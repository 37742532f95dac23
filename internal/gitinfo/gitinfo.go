// Package gitinfo reads commit and remote information from a local git
// checkout via the git executable.
package gitinfo

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Commit is one local git commit.
type Commit struct {
	SHA         string
	ShortSHA    string
	Summary     string
	Message     string
	CommittedAt time.Time
}

// Record and field separators for git log output. Control characters cannot
// appear in commit messages, so parsing stays unambiguous.
const (
	logFormat = "%H%x1f%h%x1f%s%x1f%cI%x1f%B%x1e"
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// IsRepository reports whether dir is inside a git work tree.
func IsRepository(dir string) bool {
	out, err := exec.Command("git", "-C", dir, "rev-parse", "--is-inside-work-tree").Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// RecentCommits lists up to limit commits reachable from HEAD, newest first.
func RecentCommits(dir string, limit int) ([]Commit, error) {
	out, err := exec.Command(
		"git", "-C", dir, "log",
		"-n", strconv.Itoa(limit),
		"--pretty=format:"+logFormat,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("git log: %w", err)
	}
	return parseLog(string(out))
}

func parseLog(raw string) ([]Commit, error) {
	var commits []Commit
	for _, record := range strings.Split(raw, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		fields := strings.SplitN(record, fieldSep, 5)
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed git log record %q", record)
		}
		committedAt, err := time.Parse(time.RFC3339, fields[3])
		if err != nil {
			return nil, fmt.Errorf("parse commit date %q: %w", fields[3], err)
		}
		commits = append(commits, Commit{
			SHA:         fields[0],
			ShortSHA:    fields[1],
			Summary:     fields[2],
			CommittedAt: committedAt,
			Message:     strings.TrimSpace(fields[4]),
		})
	}
	return commits, nil
}

// RemoteURL returns the origin remote URL, if one is configured.
func RemoteURL(dir string) (string, bool) {
	out, err := exec.Command("git", "-C", dir, "remote", "get-url", "origin").Output()
	if err != nil {
		return "", false
	}
	url := strings.TrimSpace(string(out))
	return url, url != ""
}

// NormalizeRemote canonicalizes a remote URL for comparison: lowercased,
// scheme and .git suffix dropped, SSH form rewritten to host/path.
func NormalizeRemote(url string) string {
	normalized := strings.ToLower(strings.TrimSpace(url))
	normalized = strings.TrimSuffix(normalized, ".git")
	for _, prefix := range []string{"https://", "http://", "ssh://"} {
		normalized = strings.TrimPrefix(normalized, prefix)
	}
	if rest, ok := strings.CutPrefix(normalized, "git@"); ok {
		normalized = strings.Replace(rest, ":", "/", 1)
	}
	return normalized
}

// SameRemote reports whether two remote URLs point at the same repository.
func SameRemote(a, b string) bool {
	return NormalizeRemote(a) == NormalizeRemote(b)
}

// DeriveRepoName picks a repository name from the remote URL, falling back
// to the directory basename.
func DeriveRepoName(dir, remote string) string {
	if remote != "" {
		normalized := NormalizeRemote(remote)
		if idx := strings.LastIndex(normalized, "/"); idx >= 0 && idx+1 < len(normalized) {
			return normalized[idx+1:]
		}
	}
	return filepath.Base(dir)
}
