package config

// VisibilityLayer is one step of visibility resolution. Apply returns the
// value to continue with and whether the layer took effect.
type VisibilityLayer struct {
	Name  string
	Apply func(current bool) (bool, bool)
}

// VisibilityLayers returns the resolution layers in application order; the
// last layer that takes effect wins. Force-hide is applied after force-show
// so it wins when both are set.
func VisibilityLayers(caller *bool, env *Env) []VisibilityLayer {
	return []VisibilityLayer{
		{
			Name: "env default",
			Apply: func(bool) (bool, bool) {
				return env.Browser.Show, true
			},
		},
		{
			Name: "caller",
			Apply: func(current bool) (bool, bool) {
				if caller == nil {
					return current, false
				}
				return *caller, true
			},
		},
		{
			Name: "force show",
			Apply: func(current bool) (bool, bool) {
				if !env.Browser.ForceShow {
					return current, false
				}
				return true, true
			},
		},
		{
			Name: "force hide",
			Apply: func(current bool) (bool, bool) {
				if !env.Browser.ForceHide {
					return current, false
				}
				return false, true
			},
		},
	}
}

// ResolveVisibility returns true when the browser should be visible, and the
// name of the layer that decided it.
func ResolveVisibility(caller *bool, env *Env) (bool, string) {
	show := false
	decidedBy := "hidden default"
	for _, layer := range VisibilityLayers(caller, env) {
		if next, applied := layer.Apply(show); applied {
			show = next
			decidedBy = layer.Name
		}
	}
	return show, decidedBy
}
