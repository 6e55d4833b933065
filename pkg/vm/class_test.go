package vm

import "testing"

func TestClassFieldsAndMethods(t *testing.T) {
	src := `
		class Counter {
			init(start) {
				this.n = start;
			}
			increment() {
				this.n = this.n + 1;
				return this.n;
			}
		}
		var c = Counter(10);
		say(c.increment());
		say(c.increment());
	`
	if got := runSource(t, src); got != "11\n12\n" {
		t.Errorf("got %q, want %q", got, "11\n12\n")
	}
}

func TestInheritanceAndSuper(t *testing.T) {
	src := `
		class Animal {
			init(name) {
				this.name = name;
			}
			speak() {
				return this.name + " makes a sound";
			}
		}
		class Dog extends Animal {
			speak() {
				return super.speak() + " (bark)";
			}
		}
		var d = Dog("Rex");
		say(d.speak());
	`
	want := "Rex makes a sound (bark)\n"
	if got := runSource(t, src); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestInitializerAlwaysReturnsThis(t *testing.T) {
	src := `
		class Box {
			init(v) {
				this.v = v;
				return nil;
			}
		}
		var b = Box(7);
		say(b.v);
	`
	if got := runSource(t, src); got != "7\n" {
		t.Errorf("got %q, want %q", got, "7\n")
	}
}
