/*
Package token turns a machine snapshot into the opaque string handed to callers and back.

The plain codec is base64 over JSON. The sealed codec additionally encrypts and
authenticates the inner token with AES-256-GCM so callers cannot forge or edit
machine state; it accepts fallback keys so the active key can be rotated without
invalidating tokens already in circulation.
*/
package token
