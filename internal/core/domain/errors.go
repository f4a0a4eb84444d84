package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates the resource already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks permission for this action
	ErrForbidden = errors.New("forbidden")

	// ErrTypeNotRegistered indicates a record type is not part of the schema
	ErrTypeNotRegistered = errors.New("type not registered")

	// ErrNoIndexes indicates no index covers a type that should be searchable.
	// The registry is rebuilt when configuration is; hitting this means the
	// configuration and the registered types disagree.
	ErrNoIndexes = errors.New("no indexes configured for type")

	// ErrRotationInProgress indicates an index rotation is already running
	ErrRotationInProgress = errors.New("rotation already in progress")

	// ErrBulkModeActive indicates the operation is unavailable while bulk
	// import has synchronization suspended
	ErrBulkModeActive = errors.New("bulk import mode active")

	// ErrSchemaReadOnly indicates the configured schema source does not
	// accept registrations (file-backed sources are edited on disk)
	ErrSchemaReadOnly = errors.New("schema source is read-only")

	// ErrTokenExpired indicates the auth token has expired
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid indicates the auth token is malformed or invalid
	ErrTokenInvalid = errors.New("token invalid")

	// ErrSessionNotFound indicates the session does not exist
	ErrSessionNotFound = errors.New("session not found")

	// ErrInvalidCredentials indicates a wrong username/password combination
	ErrInvalidCredentials = errors.New("invalid credentials")
)
