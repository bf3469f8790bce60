package mcgen

const irAdd = `
define i64 @add(i64 %a, i64 %b) {
entry:
  %s = add i64 %a, %b
  ret i64 %s
}
`

const irEmpty = `; empty module
`

const irGlobals = `
@counter = global i64 0

declare i64 @ext(i64)

define i64 @bump(i64 %n) {
entry:
  %v = load i64, i64* @counter
  %w = add i64 %v, %n
  store i64 %w, i64* @counter
  %r = call i64 @ext(i64 %w)
  ret i64 %r
}
`

const irSwitch8 = `
declare i64 @f0(i64)
declare i64 @f1(i64)
declare i64 @f2(i64)
declare i64 @f3(i64)
declare i64 @f4(i64)
declare i64 @f5(i64)
declare i64 @f6(i64)
declare i64 @f7(i64)

define i64 @dispatch(i64 %x) {
entry:
  switch i64 %x, label %dflt [
    i64 0, label %c0
    i64 1, label %c1
    i64 2, label %c2
    i64 3, label %c3
    i64 4, label %c4
    i64 5, label %c5
    i64 6, label %c6
    i64 7, label %c7
  ]
c0:
  %r0 = call i64 @f0(i64 %x)
  br label %exit
c1:
  %r1 = call i64 @f1(i64 %x)
  br label %exit
c2:
  %r2 = call i64 @f2(i64 %x)
  br label %exit
c3:
  %r3 = call i64 @f3(i64 %x)
  br label %exit
c4:
  %r4 = call i64 @f4(i64 %x)
  br label %exit
c5:
  %r5 = call i64 @f5(i64 %x)
  br label %exit
c6:
  %r6 = call i64 @f6(i64 %x)
  br label %exit
c7:
  %r7 = call i64 @f7(i64 %x)
  br label %exit
dflt:
  br label %exit
exit:
  %r = phi i64 [ %r0, %c0 ], [ %r1, %c1 ], [ %r2, %c2 ], [ %r3, %c3 ], [ %r4, %c4 ], [ %r5, %c5 ], [ %r6, %c6 ], [ %r7, %c7 ], [ 0, %dflt ]
  ret i64 %r
}
`

const irConstSwitch = `
define i32 @lookup(i32 %x) {
entry:
  switch i32 %x, label %dflt [
    i32 0, label %a
    i32 1, label %b
    i32 2, label %c
    i32 3, label %d
    i32 4, label %e
    i32 5, label %f
  ]
a:
  br label %exit
b:
  br label %exit
c:
  br label %exit
d:
  br label %exit
e:
  br label %exit
f:
  br label %exit
dflt:
  br label %exit
exit:
  %r = phi i32 [ 13, %a ], [ 42, %b ], [ 7, %c ], [ 99, %d ], [ 5, %e ], [ 61, %f ], [ 0, %dflt ]
  ret i32 %r
}
`

const irTailCall = `
declare fastcc i64 @next(i64)

define fastcc i64 @step(i64 %n) {
entry:
  %m = add i64 %n, 1
  %r = tail call fastcc i64 @next(i64 %m)
  ret i64 %r
}
`
