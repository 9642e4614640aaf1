package account

// RegistrationPendingFlag marks a browser whose signed-in user still has to
// complete registration.
const RegistrationPendingFlag = "registration_pending"

const registeredFlagPrefix = "registered_"

// RegisteredFlagKey returns the flag recording that uid finished registration.
func RegisteredFlagKey(uid string) string { return registeredFlagPrefix + uid }

// NavigationLocked reports whether gated navigation must be blocked.
func NavigationLocked(registered, pending bool) bool { return !registered && pending }
