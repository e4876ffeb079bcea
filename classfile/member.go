package classfile

// Member is a field_info or method_info with its name and descriptor
// resolved from the constant pool.
type Member struct {
	AccessFlags AccessFlags
	Name        string
	Descriptor  string
	Attributes  Attributes
}

func (m *Member) IsConstructor() bool {
	return m.Name == "<init>"
}

func (m *Member) IsStaticInitializer() bool {
	return m.Name == "<clinit>"
}

// IsSynthetic reports the ACC_SYNTHETIC flag or the legacy Synthetic
// attribute.
func (m *Member) IsSynthetic() bool {
	return m.AccessFlags.IsSynthetic() || m.Attributes.IsSynthetic()
}
