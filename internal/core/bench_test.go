package core

import (
	"fmt"
	"testing"
)

func benchmarkRoomBroadcast(b *testing.B, recipients int) {
	hub := newTestHub()
	roomID, _ := hub.Registry().GetOrCreateRoom("bench")

	target := hub.Register("target")
	if err := hub.Registry().AddMember(roomID, target.ID()); err != nil {
		b.Fatalf("AddMember: %v", err)
	}

	// Drain every recipient but the measured one to avoid drops.
	for i := 1; i < recipients; i++ {
		c := hub.Register(fmt.Sprintf("client-%d", i))
		if err := hub.Registry().AddMember(roomID, c.ID()); err != nil {
			b.Fatalf("AddMember: %v", err)
		}
		go func(cl *Client) {
			for range cl.Outbound() {
			}
		}(c)
	}

	msg := NewChatMessage("bench", "payload")

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if err := hub.Broadcast(roomID, msg); err != nil {
			b.Fatalf("Broadcast: %v", err)
		}
		<-target.Outbound()
	}
}

func BenchmarkRoomBroadcast_10(b *testing.B)  { benchmarkRoomBroadcast(b, 10) }
func BenchmarkRoomBroadcast_100(b *testing.B) { benchmarkRoomBroadcast(b, 100) }
func BenchmarkRoomBroadcast_500(b *testing.B) { benchmarkRoomBroadcast(b, 500) }
