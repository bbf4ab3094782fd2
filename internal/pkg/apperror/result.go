package apperror

// Result is the tagged outcome handed to callers outside the HTTP layer:
// {ok: true, value} on success, {ok: false, kind, message} on failure.
type Result[T any] struct {
	OK      bool   `json:"ok"`
	Value   T      `json:"value,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

func Ok[T any](value T) Result[T] {
	return Result[T]{OK: true, Value: value}
}

func Fail[T any](err error) Result[T] {
	return Result[T]{Kind: KindOf(err), Message: err.Error()}
}

// From builds a Result from the usual (value, error) pair.
func From[T any](value T, err error) Result[T] {
	if err != nil {
		return Fail[T](err)
	}
	return Ok(value)
}
