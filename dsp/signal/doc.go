// Package signal generates continuous test signals for driving effects
// without an input file.
//
// A Source keeps its phase and noise state between calls, so consecutive
// Fill calls produce one unbroken signal regardless of block size.
package signal
