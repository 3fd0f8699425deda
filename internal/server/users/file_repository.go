package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/examhub/examhub/internal/common"
)

// FileRepository stores users in a newline-delimited text file, one
// "username:credential:role" record per line. The file is re-read on every
// lookup so records appended by external provisioning (e.g. an operator
// adding an admin row while the server runs) are picked up immediately.
type FileRepository struct {
	mu   sync.Mutex
	path string
}

func NewFileRepository(path string) (*FileRepository, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o770); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return &FileRepository{path: path}, nil
}

func (r *FileRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookup(user.UserName); err == nil {
		return nil, common.ErrAlreadyExists
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	file, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o660)
	if err != nil {
		return nil, fmt.Errorf("opening users file: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "%s:%s:%s\n", user.UserName, user.Credential, user.Role); err != nil {
		return nil, fmt.Errorf("appending user record: %w", err)
	}

	return user, nil
}

func (r *FileRepository) GetByUserName(ctx context.Context, userName string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lookup(userName)
}

func (r *FileRepository) lookup(userName string) (*User, error) {
	file, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("opening users file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		user, ok := parseRecord(scanner.Text())
		if ok && user.UserName == userName {
			return user, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading users file: %w", err)
	}

	return nil, common.ErrNotFound
}

// parseRecord splits one "username:credential:role" line. The credential may
// itself contain colons (bcrypt hashes do), so the line is split from both
// ends: first field is the username, last field is the role.
func parseRecord(line string) (*User, bool) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, false
	}

	first := strings.Index(line, ":")
	last := strings.LastIndex(line, ":")
	if first < 1 || last <= first {
		return nil, false
	}

	user := &User{
		UserName:   line[:first],
		Credential: line[first+1 : last],
		Role:       line[last+1:],
	}
	if user.Role == "" {
		user.Role = RoleParticipant
	}
	return user, true
}
