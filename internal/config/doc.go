// Package config defines the format-agnostic blueprint of an environment,
// along with the Loader interface that reads blueprints from disk.
//
// A Blueprint only describes what to build. Applying it to a springboard
// Builder is the app package's job; concrete loaders, such as the HCL one,
// live in separate packages.
package config
