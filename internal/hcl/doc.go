// Package hcl provides the HCL implementation of config.Loader. It parses
// blueprint files, decodes the fixed blocks with gohcl and converts free-form
// row attributes from cty values into plain Go values.
package hcl
