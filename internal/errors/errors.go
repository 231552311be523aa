package errors

import (
	"errors"
	"fmt"
)

// NotFoundError represents an error when an entity is not found
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// Is enables errors.Is() comparison for NotFoundError
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// AlreadyExistsError represents an error when an entity already exists
type AlreadyExistsError struct {
	Entity  string
	Context string // Additional context like "in this zoo"
}

func (e *AlreadyExistsError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s already exists %s", e.Entity, e.Context)
	}
	return fmt.Sprintf("%s already exists", e.Entity)
}

// Is enables errors.Is() comparison for AlreadyExistsError
func (e *AlreadyExistsError) Is(target error) bool {
	t, ok := target.(*AlreadyExistsError)
	if !ok {
		return false
	}
	return e.Entity == t.Entity
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ConfigurationError represents configuration-related errors, including
// association definitions rejected at registration time
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Entity Not Found Errors
var (
	ErrAssociationNotFound = &NotFoundError{Entity: "polymorphic association"}
	ErrAccessorNotFound    = &NotFoundError{Entity: "collection accessor"}
	ErrZooNotFound         = &NotFoundError{Entity: "zoo"}
	ErrAnimalNotFound      = &NotFoundError{Entity: "animal"}
)

// Already Exists Errors
var (
	ErrZooExists    = &AlreadyExistsError{Entity: "zoo", Context: "with this name"}
	ErrAnimalExists = &AlreadyExistsError{Entity: "animal", Context: "with this name"}
)

// Association Errors
var (
	ErrMemberTypeNotRegistered = errors.New("member type is not part of this association")
	ErrOwnerTypeMismatch       = errors.New("value is not the owner type of this association")
	ErrOwnerNotPersisted       = &ValidationError{Field: "owner", Message: "owner has no primary key, save it first"}
	ErrMemberNotPersisted      = &ValidationError{Field: "member", Message: "member has no primary key, save it first"}
	ErrAccessorMismatch        = &ValidationError{Field: "accessor", Message: "member does not belong to this collection"}
	ErrInvalidDestination      = &ValidationError{Field: "dest", Message: "destination must be a pointer to a slice of the collection type"}
	ErrUnknownAnimalKind       = &ValidationError{Field: "kind", Message: "unknown animal kind"}
)

// Configuration Errors
var (
	ErrNoMemberTypes      = &ConfigurationError{Message: "polymorphic association requires at least one member type"}
	ErrUnsupportedDriver  = &ConfigurationError{Message: "unsupported database driver"}
	ErrSeedFileNotDefined = &ConfigurationError{Message: "SEED_FILE is not set"}
)

// Helper Functions

// IsNotFound checks if an error is a NotFoundError
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.Is(err, &NotFoundError{}) || errors.As(err, &notFoundErr)
}

// IsAlreadyExists checks if an error is an AlreadyExistsError
func IsAlreadyExists(err error) bool {
	var existsErr *AlreadyExistsError
	return errors.Is(err, &AlreadyExistsError{}) || errors.As(err, &existsErr)
}

// IsValidation checks if an error is a ValidationError
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.Is(err, &ValidationError{}) || errors.As(err, &validationErr)
}

// IsConfiguration checks if an error is a ConfigurationError
func IsConfiguration(err error) bool {
	var configErr *ConfigurationError
	return errors.Is(err, &ConfigurationError{}) || errors.As(err, &configErr)
}

// NewNotFoundError creates a new NotFoundError for a custom entity
func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

// NewAlreadyExistsError creates a new AlreadyExistsError for a custom entity
func NewAlreadyExistsError(entity, context string) error {
	return &AlreadyExistsError{Entity: entity, Context: context}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewConfigurationError creates a new ConfigurationError
func NewConfigurationError(message string) error {
	return &ConfigurationError{Message: message}
}

// NewConfigurationErrorf creates a new ConfigurationError with a formatted message
func NewConfigurationErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}
