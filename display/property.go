package display

import (
	"fmt"
)

// PropertyNotFoundError reports a property name missing from an object.
type PropertyNotFoundError struct {
	Name string
}

func (e *PropertyNotFoundError) Error() string {
	return "property not found: " + e.Name
}

// FindProperty returns the id of the property called name on obj.
// Property ids are assigned by the driver, so they are looked up by name
// on every configuration pass and never cached.
func FindProperty(dev Device, obj Object, name string) (uint32, error) {
	props, err := dev.ObjectProperties(obj)
	if err != nil {
		return 0, err
	}
	for _, id := range props.Props {
		info, err := dev.Property(id)
		if err != nil {
			return 0, fmt.Errorf("property %d of object %d: %w", id, obj.ID, err)
		}
		if info.Name == name {
			return id, nil
		}
	}
	return 0, &PropertyNotFoundError{Name: name}
}
