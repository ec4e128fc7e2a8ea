// Package portal is the client-side authentication controller for the
// Service Advisor portal.
//
// A Controller owns three flows:
//   - Revalidate runs once at start-up and resumes, discards, or ignores a stored session.
//   - Submit logs in and branches on role and on whether the password is temporary.
//   - ChangePassword completes the forced change after a temporary-password login.
//
// UI effects go through the View and Navigator interfaces; the controller
// never renders anything itself.
package portal
