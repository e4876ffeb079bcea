package classfile

import "strings"

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// ParameterDescriptor returns the parenthesized parameter part of a
// method descriptor, which identifies its erased signature.
func ParameterDescriptor(desc string) string {
	if end := strings.IndexByte(desc, ')'); strings.HasPrefix(desc, "(") && end > 0 {
		return desc[:end+1]
	}
	return ""
}

// ParameterDescriptors splits a method descriptor into its parameter
// field descriptors.
func ParameterDescriptors(desc string) []string {
	params := ParameterDescriptor(desc)
	if params == "" {
		return nil
	}
	params = params[1 : len(params)-1]

	var out []string
	for i := 0; i < len(params); {
		start := i
		for i < len(params) && params[i] == '[' {
			i++
		}
		if i >= len(params) {
			break
		}
		if params[i] == 'L' {
			end := strings.IndexByte(params[i:], ';')
			if end < 0 {
				break
			}
			i += end
		}
		i++
		out = append(out, params[start:i])
	}
	return out
}
