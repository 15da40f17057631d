/*
Package mocks will have all the mocks of the library, we'll try to use mocking using blackbox
testing and integration tests whenever is possible.
*/
package mocks

// remote mocks.
//go:generate mockery -output ./remote -outpkg remote -dir ../../remote -name Caller
