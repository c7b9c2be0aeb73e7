package ecs

import (
	"reflect"
	"testing"
)

type testBoxComponent struct {
	X, Y float64
}

type testStateComponent struct {
	Alive bool
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	// ID 从 1 开始且唯一
	if id1 != 1 || id2 != 2 {
		t.Errorf("Expected IDs 1 and 2, got %d and %d", id1, id2)
	}
	if em.EntityCount() != 2 {
		t.Errorf("Expected 2 entities, got %d", em.EntityCount())
	}
}

func TestGenericComponentAccess(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testBoxComponent{X: 40, Y: 80})

	box, ok := GetComponent[*testBoxComponent](em, id)
	if !ok {
		t.Fatal("Component should be found")
	}
	if box.X != 40 || box.Y != 80 {
		t.Errorf("Component data mismatch, got (%f, %f)", box.X, box.Y)
	}

	if _, ok := GetComponent[*testStateComponent](em, id); ok {
		t.Error("Missing component should not be returned")
	}

	// 通过泛型接口获取的组件与反射接口一致
	raw, found := em.GetComponent(id, reflect.TypeOf(&testBoxComponent{}))
	if !found || raw.(*testBoxComponent) != box {
		t.Error("Generic and reflective access should return the same instance")
	}
}

func TestDestroyEntityIsDeferred(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	AddComponent(em, id, &testBoxComponent{})

	em.DestroyEntity(id)
	em.DestroyEntity(id) // 重复标记

	if !em.Exists(id) {
		t.Error("Entity should still exist before cleanup")
	}

	em.RemoveMarkedEntities()
	if em.Exists(id) {
		t.Error("Entity should be removed after cleanup")
	}
	if _, ok := GetComponent[*testBoxComponent](em, id); ok {
		t.Error("Removed entity should have no components")
	}
}

func TestGetEntitiesWithSortedAndFiltered(t *testing.T) {
	em := NewEntityManager()

	ids := make([]EntityID, 0, 5)
	for i := 0; i < 5; i++ {
		id := em.CreateEntity()
		AddComponent(em, id, &testBoxComponent{X: float64(i)})
		if i%2 == 0 {
			AddComponent(em, id, &testStateComponent{Alive: true})
		}
		ids = append(ids, id)
	}

	boxes := em.GetEntitiesWith(reflect.TypeOf(&testBoxComponent{}))
	if len(boxes) != 5 {
		t.Fatalf("Expected 5 entities, got %d", len(boxes))
	}
	for i := 1; i < len(boxes); i++ {
		if boxes[i-1] >= boxes[i] {
			t.Fatalf("Query result not sorted: %v", boxes)
		}
	}

	both := GetEntitiesWith2[*testBoxComponent, *testStateComponent](em)
	want := []EntityID{ids[0], ids[2], ids[4]}
	if len(both) != len(want) {
		t.Fatalf("Expected %v, got %v", want, both)
	}
	for i := range want {
		if both[i] != want[i] {
			t.Errorf("Index %d: expected %d, got %d", i, want[i], both[i])
		}
	}
}
