// Package formstate defines the result protocol every form action returns.
// A State is one of three variants (Default, Success, Fail) and is replaced
// wholesale after each submission attempt. The variants are sealed: only the
// constructors in this package can produce them, and consumers that implement
// Visitor are forced by the compiler to handle every tag.
package formstate
