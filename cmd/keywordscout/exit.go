package main

// exitError wraps an error with the spec.md §6 exit code its cause maps
// to, so main's top-level Execute() error handler doesn't need to know
// every subcommand's failure modes.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
func (e *exitError) ExitCode() int { return e.code }

func configErr(err error) error      { return &exitError{code: exitConfigError, err: err} }
func insufficientErr(err error) error { return &exitError{code: exitInsufficient, err: err} }
func internalErr(err error) error    { return &exitError{code: exitInternalError, err: err} }
