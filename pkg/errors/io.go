package errors

import (
	"errors"
	"io"
	"io/fs"
	"net"
	"os"
	"syscall"
)

// IOError is the variant for file system, stream and socket failures.
type IOError struct {
	Base

	// Op is the failed operation ("open", "read", "dial", ...).
	Op string

	// Path is the file path or network address involved.
	Path string
}

// IO builds an I/O error for the given operation and path. The code is
// derived from the cause; see [FromIO].
func IO(op, path string, cause error, opts ...Option) *IOError {
	condition := classifyIO(cause)
	base := []Option{WithField("op", op), WithField("path", path)}
	return &IOError{
		Base: NewBase(CategoryIO, CodeFor(CategoryIO, condition), cause, append(base, opts...)...),
		Op:   op,
		Path: path,
	}
}

// FromIO converts an I/O failure into an [IOError]. The operation and
// path are taken from *fs.PathError, *os.LinkError, *os.SyscallError or
// *net.OpError when present. The code is chosen from the most specific
// signal in the chain:
//
//	fs.ErrNotExist               IO_NOT_FOUND
//	fs.ErrPermission             IO_PERMISSION_DENIED
//	fs.ErrExist                  IO_ALREADY_EXISTS
//	timeouts                     IO_TIMEOUT
//	EINTR                        IO_INTERRUPTED
//	io.ErrUnexpectedEOF          IO_UNEXPECTED_EOF
//	fs.ErrClosed, net.ErrClosed  IO_CLOSED
//	ENOSPC, ENOMEM, EMFILE       IO_OUT_OF_RESOURCES
//	*net.OpError                 IO_NETWORK
//	anything else                IO_ERROR
func FromIO(err error) *IOError {
	var (
		pathErr *fs.PathError
		linkErr *os.LinkError
		sysErr  *os.SyscallError
		opErr   *net.OpError
	)
	var op, path string
	var extra []Option
	switch {
	case errors.As(err, &pathErr):
		op, path = pathErr.Op, pathErr.Path
	case errors.As(err, &linkErr):
		op, path = linkErr.Op, linkErr.Old
		extra = append(extra, WithField("new_path", linkErr.New))
	case errors.As(err, &opErr):
		op = opErr.Op
		extra = append(extra, WithField("net", opErr.Net))
		if opErr.Addr != nil {
			path = opErr.Addr.String()
			if host, port, splitErr := net.SplitHostPort(path); splitErr == nil {
				extra = append(extra, WithField("host", host), WithField("port", port))
			}
		}
	case errors.As(err, &sysErr):
		op = sysErr.Syscall
	}
	return IO(op, path, err, extra...)
}

type timeout interface {
	Timeout() bool
}

func classifyIO(err error) Condition {
	if err == nil {
		return ConditionGeneric
	}
	var t timeout
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ConditionNotFound
	case errors.Is(err, fs.ErrPermission):
		return ConditionPermissionDenied
	case errors.Is(err, fs.ErrExist):
		return ConditionAlreadyExists
	case errors.Is(err, os.ErrDeadlineExceeded), errors.As(err, &t) && t.Timeout():
		return ConditionTimeout
	case errors.Is(err, syscall.EINTR):
		return ConditionInterrupted
	case errors.Is(err, io.ErrUnexpectedEOF):
		return ConditionUnexpectedEOF
	case errors.Is(err, fs.ErrClosed), errors.Is(err, net.ErrClosed):
		return ConditionClosed
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, syscall.ENOMEM),
		errors.Is(err, syscall.EMFILE), errors.Is(err, syscall.ENFILE):
		return ConditionOutOfResources
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ConditionNetwork
	}
	return ConditionGeneric
}

// hasIOSignal reports whether err carries evidence of an I/O failure.
func hasIOSignal(err error) bool {
	var (
		pathErr *fs.PathError
		linkErr *os.LinkError
		sysErr  *os.SyscallError
		opErr   *net.OpError
		errno   syscall.Errno
	)
	return errors.As(err, &pathErr) ||
		errors.As(err, &linkErr) ||
		errors.As(err, &sysErr) ||
		errors.As(err, &opErr) ||
		errors.As(err, &errno) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, fs.ErrExist) ||
		errors.Is(err, fs.ErrClosed) ||
		errors.Is(err, os.ErrDeadlineExceeded)
}
