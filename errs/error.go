package errs

import "strings"

const (
	// TitleRequired is returned when a post is created or updated
	// without a title.
	TitleRequired modelError = "models: title is required"
	// ContentRequired is returned when a post or comment is created
	// with empty content.
	ContentRequired modelError = "models: content must not be empty"
	// StatusInvalid is returned when a post status is neither
	// draft nor published.
	StatusInvalid modelError = "models: status must be draft or published"
	// EmailRequired is returned when an email address is
	// not provided when creating a user.
	EmailRequired modelError = "models: email address is required"
	// EmailTaken is returned when an update or create is attempted
	// with an email address that is already in use.
	EmailTaken modelError = "models: email address is already taken"
	// PasswordRequired is returned when a create is attempted
	// without a user password provided.
	PasswordRequired modelError = "models: password is required"

	ProviderRequired       privateError = "models: oauth provider is required"
	ProviderUserIdRequired privateError = "models: oauth provider user ID is required"

	// IDInvalid is returned when an invalid ID is provided
	// to a method like Delete.
	IDInvalid privateError = "models: ID provided was invalid"
	// RememberRequired is returned when a create or update
	// is attempted without a user remember token hash.
	RememberRequired privateError = "models: remember token is required"
	// RememberTooShort is returned when a remember token is
	// not at least 32 bytes.
	RememberTooShort privateError = "models: remember token must be at least 32 bytes"
	UserIDRequired   privateError = "models: user ID is required"
)

type modelError string

func (e modelError) Error() string {
	return string(e)
}

func (e modelError) Public() string {
	s := strings.Replace(string(e), "models: ", "", 1)
	split := strings.Split(s, " ")
	split[0] = strings.Title(split[0])
	return strings.Join(split, " ")
}

type privateError string

func (e privateError) Error() string {
	return string(e)
}
