package chain

import "errors"

// Set of errors reported when a candidate chain is rejected.
var (
	ErrChainTooShort = errors.New("the incoming chain must be longer")
	ErrChainInvalid  = errors.New("the incoming chain must be valid")
)

// Set of errors reported when a chain fails validation. All of them are
// wrapped by ErrChainInvalid when returned from Replace.
var (
	ErrEmptyChain       = errors.New("chain has no blocks")
	ErrGenesisMismatch  = errors.New("chain does not start with the genesis block")
	ErrLastHashMismatch = errors.New("last hash does not match the previous block")
	ErrDifficultyJump   = errors.New("difficulty changed by more than one")
	ErrHashMismatch     = errors.New("hash does not match the block content")
	ErrInsufficientWork = errors.New("hash does not meet the block difficulty")
)
