package graphics

import "errors"

var (
	ErrShaderCompile  = errors.New("shader compilation failed")
	ErrShaderLink     = errors.New("shader program link failed")
	ErrInvalidProgram = errors.New("invalid shader program")
	ErrResourceCreate = errors.New("gpu resource creation failed")
	ErrLayoutConsumed = errors.New("buffer layout already consumed")
	ErrEmptyLayout    = errors.New("buffer layout has no elements")
	ErrUnknownType    = errors.New("unknown attribute component type")
)
