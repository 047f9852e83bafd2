// internal/common/database/errors.go
package database

import "errors"

var ErrLeadExists = errors.New("lead already exists")
