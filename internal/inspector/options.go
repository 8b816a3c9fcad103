package inspector

// NavKeys maps keyboard keys to directional element selection.
type NavKeys struct {
	Parent string `json:"parent"`
	Child  string `json:"child"`
	Next   string `json:"next"`
	Prev   string `json:"prev"`
}

// Options is the browser-facing inspector configuration. It is resolved once
// per session and serialized verbatim into the virtual options module.
type Options struct {
	ToggleKeyCombo   string  `json:"toggleKeyCombo"`
	NavKeys          NavKeys `json:"navKeys"`
	OpenKey          string  `json:"openKey"`
	HoldMode         bool    `json:"holdMode"`
	ShowToggleButton string  `json:"showToggleButton"`
	ToggleButtonPos  string  `json:"toggleButtonPos"`
	CustomStyles     bool    `json:"customStyles"`
	AppendTo         string  `json:"appendTo,omitempty"`
}

// HostOptions carries the inspector options a host hands over. Unset fields
// keep their defaults; pointer fields distinguish "false" from "absent".
type HostOptions struct {
	ToggleKeyCombo   string
	NavKeys          NavKeys
	OpenKey          string
	HoldMode         *bool
	ShowToggleButton string
	ToggleButtonPos  string
	CustomStyles     *bool
	AppendTo         string
}

// Host is the typed construction-time contract with the embedding dev tool.
// A nil Options means the host has no inspector configured and the session
// stays disabled for its whole lifetime.
type Host struct {
	Options   *HostOptions
	KitOutDir string
}

func defaultOptions() Options {
	return Options{
		ToggleKeyCombo: "control-shift",
		NavKeys: NavKeys{
			Parent: "ArrowUp",
			Child:  "ArrowDown",
			Next:   "ArrowRight",
			Prev:   "ArrowLeft",
		},
		ShowToggleButton: "active",
		ToggleButtonPos:  "top-right",
		CustomStyles:     true,
	}
}

// mergeOptions lays host fields over the defaults, shallowly: a set host
// field wins, anything unset keeps its default.
func mergeOptions(host *HostOptions) Options {
	opts := defaultOptions()
	if host == nil {
		return opts
	}
	if host.ToggleKeyCombo != "" {
		opts.ToggleKeyCombo = host.ToggleKeyCombo
	}
	if host.NavKeys.Parent != "" {
		opts.NavKeys.Parent = host.NavKeys.Parent
	}
	if host.NavKeys.Child != "" {
		opts.NavKeys.Child = host.NavKeys.Child
	}
	if host.NavKeys.Next != "" {
		opts.NavKeys.Next = host.NavKeys.Next
	}
	if host.NavKeys.Prev != "" {
		opts.NavKeys.Prev = host.NavKeys.Prev
	}
	if host.OpenKey != "" {
		opts.OpenKey = host.OpenKey
	}
	if host.HoldMode != nil {
		opts.HoldMode = *host.HoldMode
	}
	if host.ShowToggleButton != "" {
		opts.ShowToggleButton = host.ShowToggleButton
	}
	if host.ToggleButtonPos != "" {
		opts.ToggleButtonPos = host.ToggleButtonPos
	}
	if host.CustomStyles != nil {
		opts.CustomStyles = *host.CustomStyles
	}
	if host.AppendTo != "" {
		opts.AppendTo = host.AppendTo
	}
	return opts
}
