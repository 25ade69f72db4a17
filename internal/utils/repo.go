package utils

import (
	"fmt"
	"net/url"
	"strings"
)

// ParseRepository accepts "owner/name", "github.com/owner/name" or a full
// GitHub URL and returns owner, name and the canonical "owner/name" form.
func ParseRepository(repo string) (owner, name, fullName string, err error) {
	repo = strings.TrimSpace(repo)
	if repo == "" {
		return "", "", "", fmt.Errorf("repository cannot be empty")
	}

	path := repo
	if strings.Contains(repo, "://") {
		u, err := url.Parse(repo)
		if err != nil {
			return "", "", "", err
		}
		path = u.Path
	} else if strings.HasPrefix(repo, "github.com/") {
		path = strings.TrimPrefix(repo, "github.com/")
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", fmt.Errorf("invalid repository %q, expected owner/name", repo)
	}

	owner = parts[0]
	name = strings.TrimSuffix(parts[1], ".git")
	return owner, name, owner + "/" + name, nil
}
